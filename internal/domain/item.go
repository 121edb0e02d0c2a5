package domain

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind tells stumps (round 1) and questions (round 2) apart
type ItemKind string

const (
	KindStump    ItemKind = "stump"
	KindQuestion ItemKind = "question"
)

// Item is a yes/no stump or question waiting for, or holding, the creator's answer
type Item struct {
	ID         string
	Kind       ItemKind
	GameID     string
	Asker      string
	Text       string
	Answer     *bool // nil until answered
	MessageRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Pending reports whether the creator has not answered yet
func (i *Item) Pending() bool {
	return i.Answer == nil
}

// AnswerLabel returns Pending, Yes or No
func (i *Item) AnswerLabel() string {
	switch {
	case i.Answer == nil:
		return "Pending"
	case *i.Answer:
		return "Yes"
	default:
		return "No"
	}
}

// Choice is a decoded Yes/No button press
type Choice struct {
	Kind ItemKind
	ID   string
	Yes  bool
}

var kindCodes = map[ItemKind]string{
	KindStump:    "s",
	KindQuestion: "q",
}

// EncodeToken builds the opaque payload carried by an answer button.
// Telegram caps callback data at 64 bytes, so the format stays compact: s:<id>:y
func EncodeToken(kind ItemKind, id string, yes bool) string {
	answer := "n"
	if yes {
		answer = "y"
	}
	return kindCodes[kind] + ":" + id + ":" + answer
}

// ParseToken decodes a payload produced by EncodeToken
func ParseToken(token string) (Choice, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[1] == "" {
		return Choice{}, fmt.Errorf("malformed answer token %q", token)
	}

	var c Choice
	switch parts[0] {
	case "s":
		c.Kind = KindStump
	case "q":
		c.Kind = KindQuestion
	default:
		return Choice{}, fmt.Errorf("unknown item kind in token %q", token)
	}

	switch parts[2] {
	case "y":
		c.Yes = true
	case "n":
	default:
		return Choice{}, fmt.Errorf("unknown answer in token %q", token)
	}

	c.ID = parts[1]
	return c, nil
}
