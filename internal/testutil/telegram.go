package testutil

import (
	"errors"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v3"
)

// FakeContext is a telebot context backed by fixed values. Methods it does
// not override panic.
type FakeContext struct {
	tele.Context

	UpdateID  int
	Msg       *tele.Message
	From      *tele.User
	Cb        *tele.Callback
	Responses []*tele.CallbackResponse
}

// NewCommandContext creates a context for a command message in chat
func NewCommandContext(chat *tele.Chat, from *tele.User, text, payload string) *FakeContext {
	return &FakeContext{
		Msg: &tele.Message{
			ID:      1,
			Chat:    chat,
			Sender:  from,
			Text:    text,
			Payload: payload,
		},
		From: from,
	}
}

// NewCallbackContext creates a context for a button press on msg
func NewCallbackContext(msg *tele.Message, from *tele.User, unique, data string) *FakeContext {
	return &FakeContext{
		From: from,
		Cb: &tele.Callback{
			ID:      "cb",
			Sender:  from,
			Message: msg,
			Unique:  unique,
			Data:    data,
		},
	}
}

func (c *FakeContext) Update() tele.Update {
	return tele.Update{ID: c.UpdateID}
}

func (c *FakeContext) Message() *tele.Message {
	if c.Cb != nil {
		return c.Cb.Message
	}
	return c.Msg
}

func (c *FakeContext) Chat() *tele.Chat {
	if msg := c.Message(); msg != nil {
		return msg.Chat
	}
	return nil
}

func (c *FakeContext) Sender() *tele.User {
	return c.From
}

func (c *FakeContext) Callback() *tele.Callback {
	return c.Cb
}

func (c *FakeContext) Text() string {
	if c.Msg == nil {
		return ""
	}
	return c.Msg.Text
}

func (c *FakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		resp = []*tele.CallbackResponse{{}}
	}
	c.Responses = append(c.Responses, resp...)
	return nil
}

// Sent is a message recorded by FakeMessenger
type Sent struct {
	To   string
	Text string
	Opts []interface{}
	Msg  *tele.Message
}

// Edited is an edit recorded by FakeMessenger
type Edited struct {
	MessageID string
	Text      string
}

// FakeMessenger records outbound calls instead of talking to Telegram
type FakeMessenger struct {
	mu sync.Mutex

	Sent    []Sent
	Edited  []Edited
	Deleted []string

	// FailSends fails that many Send calls before succeeding
	FailSends int
	// Blocked recipients reject every Send
	Blocked map[string]bool

	nextID int
}

var ErrFakeSend = errors.New("fake send failed")

func (m *FakeMessenger) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Blocked[to.Recipient()] {
		return nil, ErrFakeSend
	}
	if m.FailSends > 0 {
		m.FailSends--
		return nil, ErrFakeSend
	}

	m.nextID++
	text, _ := what.(string)
	msg := &tele.Message{ID: 100 + m.nextID, Text: text}
	if chat, ok := to.(*tele.Chat); ok {
		msg.Chat = chat
	}
	m.Sent = append(m.Sent, Sent{To: to.Recipient(), Text: text, Opts: opts, Msg: msg})
	return msg, nil
}

func (m *FakeMessenger) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, _ := msg.MessageSig()
	text, _ := what.(string)
	m.Edited = append(m.Edited, Edited{MessageID: id, Text: text})
	return &tele.Message{Text: text}, nil
}

func (m *FakeMessenger) Delete(msg tele.Editable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, _ := msg.MessageSig()
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MessageRef returns the reference a stored message is deleted by
func MessageRef(msg *tele.Message) string {
	return strconv.Itoa(msg.ID)
}
