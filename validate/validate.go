// Package validate holds the pure input checks that guard the ranking
// store: player name sanitization, score bounds, and structural checks
// on records loaded from the cache or the shared remote document.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MaxNameLength is the maximum accepted player name length in runes
const MaxNameLength = 20

var (
	ErrNameEmpty      = errors.New("name is empty")
	ErrNameTooLong    = fmt.Errorf("name exceeds %d characters", MaxNameLength)
	ErrNameDisallowed = errors.New("name contains disallowed characters")
)

// blocklist catches injection vectors regardless of what the allowlist
// permits. Both checks run; either one failing rejects the input.
var blocklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script\b`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<(iframe|object|embed|link|meta)\b`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)(document|window)\.`),
	regexp.MustCompile(`\.\./`),
}

// allowlist permits word characters of the supported scripts plus
// common punctuation and whitespace
var allowlist = regexp.MustCompile(`^[\w\p{Hiragana}\p{Katakana}\p{Han}々〇〻ー！？。、・（）()\[\]\s\-]+$`)

// htmlEscaper escapes the five reserved markup characters
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Name validates a raw player name and returns the sanitized form.
// The returned name is trimmed and HTML-escaped; the length bound is
// checked against the raw input.
func Name(raw string) (string, error) {
	if raw == "" {
		return "", ErrNameEmpty
	}
	if len([]rune(raw)) > MaxNameLength {
		return "", ErrNameTooLong
	}
	for _, pattern := range blocklist {
		if pattern.MatchString(raw) {
			return "", ErrNameDisallowed
		}
	}
	if !allowlist.MatchString(raw) {
		return "", ErrNameDisallowed
	}
	sanitized := EscapeHTML(strings.TrimSpace(raw))
	if sanitized == "" {
		return "", ErrNameEmpty
	}
	return sanitized, nil
}

// EscapeHTML escapes &, <, >, " and ' for safe embedding in markup
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Score reports whether a reaction time in milliseconds lies within the
// accepted interval
func Score(score, min, max int) bool {
	return score >= min && score <= max
}

// Record performs the structural check applied to records loaded from
// the cache or the remote document before they enter the leaderboard
func Record(name string, score int, timestamp time.Time, min, max int) bool {
	if name == "" || len([]rune(name)) > MaxNameLength {
		return false
	}
	if timestamp.IsZero() {
		return false
	}
	return Score(score, min, max)
}
