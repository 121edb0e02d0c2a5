package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a game, stump or question does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by the store when a uniqueness rule or an
	// expected-phase check rejects a write
	ErrConflict = errors.New("conflicting update")
)

// RuleViolation is a precondition failure. Its message is shown to the
// requester as is and nothing has been written.
type RuleViolation struct {
	Msg string
}

func (e *RuleViolation) Error() string {
	return e.Msg
}

// Violation creates a RuleViolation
func Violation(format string, args ...any) error {
	return &RuleViolation{Msg: fmt.Sprintf(format, args...)}
}

// UserMessage returns the text to show the requester for err and whether
// err is a user-facing failure. NotFound is reported like a rule violation.
func UserMessage(err error) (string, bool) {
	var rv *RuleViolation
	if errors.As(err, &rv) {
		return rv.Msg, true
	}
	if errors.Is(err, ErrNotFound) {
		return "That game item no longer exists", true
	}
	return "", false
}

// DeliveryError means an outbound message could not be sent. The game
// mutation that produced the message stays committed.
type DeliveryError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %s after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
