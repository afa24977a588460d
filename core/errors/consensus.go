package errors

import stderrors "errors"

// Consensus errors (spec §7): drive the fallback machine rather than
// surfacing directly to a caller.
var (
	ErrNoCandidates            = stderrors.New("consensus: no candidates available for selection")
	ErrInsufficientParticipation = stderrors.New("consensus: insufficient participation")
	ErrTimeout                 = stderrors.New("consensus: timeout")
	ErrUnauthorizedVoter       = stderrors.New("consensus: unauthorized voter")
)
