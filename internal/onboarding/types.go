package onboarding

import (
	"fmt"

	"dishuflix/internal/errors"
)

type State string

const (
	InvitePending  State = "invite_pending"
	NamePending    State = "name_pending"
	PaymentPending State = "payment_pending"
	Unlocked       State = "unlocked"
)

// PaymentPhase is the sub-state of PaymentPending.
type PaymentPhase string

const (
	PaymentIdle       PaymentPhase = "idle"
	PaymentProcessing PaymentPhase = "processing"
	PaymentFailed     PaymentPhase = "failed"
)

// Outcome is what the payment surface reports back.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeSuccess, OutcomeFailure, OutcomeCancelled:
		return o, nil
	}
	return "", errors.Validationf("unknown payment outcome %q", s)
}

// CharClass restricts which characters an invite position accepts.
type CharClass byte

const (
	Letter CharClass = 'L'
	Digit  CharClass = 'D'
)

func (c CharClass) accepts(r rune) bool {
	switch c {
	case Letter:
		return r >= 'A' && r <= 'Z'
	case Digit:
		return r >= '0' && r <= '9'
	}
	return false
}

func (c CharClass) String() string {
	if c == Digit {
		return "digit"
	}
	return "letter"
}

// ParsePattern turns "LLDLLD" into per-position classes.
func ParsePattern(pattern string) ([]CharClass, error) {
	classes := make([]CharClass, 0, len(pattern))
	for i, r := range pattern {
		if r != rune(Letter) && r != rune(Digit) {
			return nil, fmt.Errorf("pattern position %d: %q is not L or D", i, r)
		}
		classes = append(classes, CharClass(r))
	}
	return classes, nil
}

type SignalKind string

const (
	// SignalInvalidChar marks a single rejected position.
	SignalInvalidChar SignalKind = "invalid_char"
	// SignalShake marks a complete code that did not match.
	SignalShake SignalKind = "shake"
)

// Signal is transient UI feedback; it expires on its own.
type Signal struct {
	Kind     SignalKind `json:"kind"`
	Position int        `json:"position"` // -1 for SignalShake
}

// InviteResult describes the buffer after an input.
type InviteResult string

const (
	InviteIncomplete InviteResult = "incomplete"
	InviteRejected   InviteResult = "rejected"
	InviteAccepted   InviteResult = "accepted"
)

// InviteCharError details a rejected invite character.
type InviteCharError struct {
	Position int    `json:"position"`
	Expected string `json:"expected"`
}
