package domain

import (
	"fmt"
	"strings"
)

const (
	statusHeader = "*********** <b>Current Status</b> ***********"
	statusFooter = "**************************************"
)

// Status is the read-only summary of a game
type Status struct {
	Header    string
	Lines     []string
	History   [][]string
	Footer    string
	WaitingOn string
	ToDo      string
}

// NewStatus builds a status for game. waitingOn and toDo come from the
// game's phase; questions must be in creation order.
func NewStatus(game *Game, waitingOn, toDo string, questions []Item) *Status {
	return &Status{
		Header: statusHeader,
		Lines: []string{
			fmt.Sprintf("Botticelli game created by %s for letter %s.", Bold(game.Creator), Bold(game.Letter)),
			fmt.Sprintf("Currently waiting on %s to %s", Bold(waitingOn), Bold(toDo)),
		},
		History:   GroupQuestions(questions),
		Footer:    statusFooter,
		WaitingOn: waitingOn,
		ToDo:      toDo,
	}
}

// Summary is the one-line form posted after an answer
func (s *Status) Summary() string {
	return fmt.Sprintf("Waiting on %s to %s", Bold(s.WaitingOn), Bold(s.ToDo))
}

// Render formats the status as a chat message
func (s *Status) Render() string {
	var b strings.Builder
	b.WriteString(s.Header)
	b.WriteString("\n")
	b.WriteString(strings.Join(s.Lines, "\n"))
	b.WriteString("\n")

	if len(s.History) > 0 {
		b.WriteString("\nPrevious questions:\n")
		for _, block := range s.History {
			b.WriteString(Escape(strings.Join(block, "\n")))
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("\n")
	}

	b.WriteString(s.Footer)
	return b.String()
}

// GroupQuestions splits the question history into display blocks.
// A block is closed right after a question answered yes; whatever is left
// at the end forms the last block.
func GroupQuestions(questions []Item) [][]string {
	var blocks [][]string
	var current []string

	for i := range questions {
		q := &questions[i]
		current = append(current, fmt.Sprintf("%s: %s", q.Text, q.AnswerLabel()))
		if q.Answer != nil && *q.Answer {
			blocks = append(blocks, current)
			current = nil
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}
