package errors

import stderrors "errors"

// Policy describes how an error should propagate once classified, per the
// table in spec §7.
type Policy int

const (
	// PolicyUnknown is returned for errors outside the taxonomy; callers
	// should treat them conservatively (report and log).
	PolicyUnknown Policy = iota
	// PolicyReportToSubmitter returns the error to whoever submitted the
	// offending transaction or request.
	PolicyReportToSubmitter
	// PolicyFallback silently drives the fallback/strategy machine.
	PolicyFallback
	// PolicyAbortMessage drops only the single offending message.
	PolicyAbortMessage
	// PolicyReturnToProposer returns the error to the proposal submitter.
	PolicyReturnToProposer
	// PolicyHaltNode halts the node rather than risk a fork.
	PolicyHaltNode
)

// Classify maps an error in the taxonomy to its propagation policy.
func Classify(err error) Policy {
	switch {
	case stderrors.Is(err, ErrBadSignature), stderrors.Is(err, ErrBadNonce),
		stderrors.Is(err, ErrInsufficientBalance), stderrors.Is(err, ErrConflict),
		stderrors.Is(err, ErrUnknownInput):
		return PolicyReportToSubmitter
	case stderrors.Is(err, ErrNoCandidates), stderrors.Is(err, ErrInsufficientParticipation),
		stderrors.Is(err, ErrTimeout), stderrors.Is(err, ErrUnauthorizedVoter):
		return PolicyFallback
	case stderrors.Is(err, ErrHashMismatch), stderrors.Is(err, ErrMalformedPayload):
		return PolicyAbortMessage
	case stderrors.Is(err, ErrTreasuryUnderflow), stderrors.Is(err, ErrExpiredProposal),
		stderrors.Is(err, ErrDuplicateProposal), stderrors.Is(err, ErrAlreadyExecuted),
		stderrors.Is(err, ErrProposalNotFound), stderrors.Is(err, ErrNotApproved),
		stderrors.Is(err, ErrPastDeadline):
		return PolicyReturnToProposer
	case stderrors.Is(err, ErrStorageError):
		return PolicyHaltNode
	default:
		return PolicyUnknown
	}
}
