package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Phase is the game's position in the turn-taking cycle.
// Values are persisted, do not reorder.
type Phase int

const (
	PhaseStump Phase = iota
	PhasePendingStump
	PhaseQuestion
	PhasePendingQuestion
	PhaseDone
	PhaseCancelled
)

// Terminal reports whether no further actions are accepted
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseCancelled
}

func (p Phase) String() string {
	switch p {
	case PhaseStump:
		return "stump"
	case PhasePendingStump:
		return "pending_stump"
	case PhaseQuestion:
		return "question"
	case PhasePendingQuestion:
		return "pending_question"
	case PhaseDone:
		return "done"
	case PhaseCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Game represents one Botticelli session in a channel
type Game struct {
	ID        string
	Creator   string
	Letter    string
	Person    string
	Channel   string
	Phase     Phase
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LetterFor returns the target letter for a person: the first character
// of the last whitespace-delimited token, uppercased.
func LetterFor(person string) (string, error) {
	fields := strings.Fields(person)
	if len(fields) == 0 {
		return "", errors.New("person name is empty")
	}
	last := []rune(fields[len(fields)-1])
	return string(unicode.ToUpper(last[0])), nil
}
