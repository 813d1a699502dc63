package ranking

import (
	"fmt"

	"github.com/yomikakisan/imada/validate"
)

// validateName runs the shared name validation and tags rejections with
// the store's submission-failure sentinel
func validateName(raw string) (string, error) {
	sanitized, err := validate.Name(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return sanitized, nil
}

func scoreValid(score int, cfg Config) bool {
	return validate.Score(score, cfg.MinScore, cfg.MaxScore)
}
