package errors

import stderrors "errors"

// State errors (spec §7): surfaced to the caller without corrupting state.
var (
	ErrTreasuryUnderflow = stderrors.New("state: treasury underflow")
	ErrExpiredProposal   = stderrors.New("state: proposal expired")
	ErrDuplicateProposal = stderrors.New("state: duplicate proposal")
	ErrAlreadyExecuted   = stderrors.New("state: proposal already executed")
	ErrProposalNotFound  = stderrors.New("state: proposal not found")
	ErrNotApproved       = stderrors.New("state: proposal not approved")
	ErrPastDeadline      = stderrors.New("state: execution deadline passed")
)
