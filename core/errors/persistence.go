package errors

import stderrors "errors"

// ErrStorageError indicates a persistence operation failed. Per spec §7 the
// caller retries with back-off; if the failure persists the node halts
// rather than risk forking.
var ErrStorageError = stderrors.New("persistence: storage error")
