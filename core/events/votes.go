package events

import "time"

const (
	TypeVoteCast             = "vote.cast"
	TypeSubjectFinalized     = "vote.subject_finalized"
	TypeSubjectRejected      = "vote.subject_rejected"
	TypeBootstrapModeEngaged = "vote.bootstrap_engaged"
)

// VoteCast is emitted whenever a vote is accepted by a collector.
type VoteCast struct {
	SubjectID string
	VoterID   string
	Choice    string
	Timestamp time.Time
}

func (VoteCast) EventType() string { return TypeVoteCast }

// SubjectFinalized is emitted when a subject (tx, block, or proposal) first
// reaches the Approved decision.
type SubjectFinalized struct {
	SubjectID string
	YesPower  string
	TotalPower string
}

func (SubjectFinalized) EventType() string { return TypeSubjectFinalized }

// SubjectRejected is emitted when a subject reaches the Rejected decision.
type SubjectRejected struct {
	SubjectID string
}

func (SubjectRejected) EventType() string { return TypeSubjectRejected }

// BootstrapModeEngaged is emitted the first time a collector degrades to
// bootstrap (any-1-approves) semantics for a subject.
type BootstrapModeEngaged struct {
	SubjectID   string
	VoterCount  int
}

func (BootstrapModeEngaged) EventType() string { return TypeBootstrapModeEngaged }
