package ranking

import "errors"

// Submission rejection reasons. Input and duplicate rejections are
// reported to the caller; remote failures never are, they only degrade
// to the local cache.
var (
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidScore        = errors.New("invalid score")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrPersistFailure      = errors.New("persist failure")
)
