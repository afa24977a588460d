package errors

import stderrors "errors"

// Validation errors (spec §7): rejected locally, reported to the submitting
// user, and never propagated as consensus failures.
var (
	ErrBadSignature        = stderrors.New("validation: bad signature")
	ErrBadNonce            = stderrors.New("validation: bad nonce")
	ErrInsufficientBalance = stderrors.New("validation: insufficient balance")
	ErrConflict            = stderrors.New("validation: conflicting transaction")
	ErrUnknownInput        = stderrors.New("validation: unknown input")
)
