package errors

import stderrors "errors"

// Cryptographic errors (spec §7): fatal for the offending message only; the
// reporter may be penalized by the peer-reputation layer (external).
var (
	ErrHashMismatch     = stderrors.New("crypto: hash mismatch")
	ErrMalformedPayload = stderrors.New("crypto: malformed payload")
)
