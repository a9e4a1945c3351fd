package domain

import "errors"

// Domain errors can be checked with errors.Is.
var (
	// ErrDraftNotFound is returned when the draft file does not exist.
	ErrDraftNotFound = errors.New("connguard: draft not found")

	// ErrInvalidDraft is returned when the draft file is not valid JSON.
	ErrInvalidDraft = errors.New("connguard: invalid draft")

	// ErrBackendRejected is returned when the backend refuses a write.
	ErrBackendRejected = errors.New("connguard: backend rejected request")
)
