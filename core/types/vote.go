package types

import (
	"encoding/json"
	"math/big"
	"time"

	"timecoin/crypto"
)

// Choice enumerates the supported ballot selections for both instant-finality
// votes and block/treasury votes (spec §3, §9: both layers share one vote
// shape).
type Choice string

const (
	ChoiceYes     Choice = "yes"
	ChoiceNo      Choice = "no"
	ChoiceAbstain Choice = "abstain"
)

// Valid reports whether the choice is one of the supported selections.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceYes, ChoiceNo, ChoiceAbstain:
		return true
	default:
		return false
	}
}

// Vote records a single participant's ballot on a subject (a transaction
// hash, block hash, or treasury proposal ID encoded as a string), together
// with the voting power snapshot in effect at cast time (spec §3).
type Vote struct {
	VoterID   string           `json:"voterId"`
	SubjectID string           `json:"subjectId"`
	Choice    Choice           `json:"choice"`
	Power     *big.Int         `json:"power"`
	Timestamp time.Time        `json:"timestamp"`
	Signature *crypto.Signature `json:"signature"`
}

// SigningBytes returns the canonical byte representation hashed and signed by
// the voter, excluding the signature itself.
func (v *Vote) SigningBytes() []byte {
	payload := struct {
		VoterID   string    `json:"voterId"`
		SubjectID string    `json:"subjectId"`
		Choice    Choice    `json:"choice"`
		Power     *big.Int  `json:"power"`
		Timestamp time.Time `json:"timestamp"`
	}{v.VoterID, v.SubjectID, v.Choice, v.Power, v.Timestamp}
	b, _ := json.Marshal(payload)
	return b
}
