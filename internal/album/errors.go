package album

import "errors"

// Input-validation errors. Any of these fails the whole run before the
// pipeline does algorithmic work; no partial result is returned.
var (
	ErrEmptyID            = errors.New("photo id is empty")
	ErrDuplicateID        = errors.New("photo id is not unique")
	ErrMissingSharpness   = errors.New("sharpness score is missing")
	ErrMissingFingerprint = errors.New("fingerprint is missing")
	ErrInvalidFingerprint = errors.New("fingerprint is not a 64-bit hex hash")
)
