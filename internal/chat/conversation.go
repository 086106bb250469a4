package chat

import (
	"encoding/json"

	"github.com/csheth/polysumm/internal/kv"
	"github.com/csheth/polysumm/internal/session"
	"go.uber.org/zap"
)

const interruptedText = "The answer was interrupted before it arrived. Please ask again."

// Conversation is the ordered message log for one document. Every mutation is
// written to the tab-scoped store. It is not safe for concurrent use; the
// Engine serializes access.
type Conversation struct {
	store  kv.Store
	logger *zap.Logger

	documentID string
	messages   []Message
}

type storedConversation struct {
	DocumentID string    `json:"documentId"`
	Messages   []Message `json:"messages"`
}

// NewConversation restores the log kept in store. Turns that were in flight
// when the previous process stopped are closed out so nothing resumes stuck.
func NewConversation(store kv.Store, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Conversation{store: store, logger: logger}
	raw, ok, err := store.Get(session.KeyChatMessages)
	if err != nil {
		logger.Warn("load conversation", zap.Error(err))
		return c
	}
	if !ok || raw == "" {
		return c
	}
	var stored storedConversation
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Warn("discarding unreadable conversation", zap.Error(err))
		return c
	}
	c.documentID = stored.DocumentID
	c.messages = normalize(stored.Messages)
	return c
}

func normalize(in []Message) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		if m.IsLoading {
			m = newMessage(RoleBot, interruptedText)
			m.IsError = true
		}
		if !m.IsComplete {
			m.IsComplete = true
		}
		m.ShowCursor = false
		out = append(out, m)
	}
	return out
}

// DocumentID is the document the log belongs to.
func (c *Conversation) DocumentID() string {
	return c.documentID
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Len is the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the final message, if any.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Get returns the message with id.
func (c *Conversation) Get(id string) (Message, bool) {
	if i := c.index(id); i >= 0 {
		return c.messages[i], true
	}
	return Message{}, false
}

// Append adds m at the end and returns it with its id filled in.
func (c *Conversation) Append(m Message) Message {
	if m.ID == "" {
		fresh := newMessage(m.Role, m.Content)
		m.ID, m.CreatedAt = fresh.ID, fresh.CreatedAt
	}
	c.messages = append(c.messages, m)
	c.persist()
	return m
}

// Update applies fn to the message with id in place.
func (c *Conversation) Update(id string, fn func(*Message)) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	fn(&c.messages[i])
	c.persist()
	return true
}

// Remove deletes the message with id.
func (c *Conversation) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.messages = append(c.messages[:i], c.messages[i+1:]...)
	c.persist()
	return true
}

// Reset empties the log for documentID and seeds it with the summary banner
// when one exists.
func (c *Conversation) Reset(documentID, summary string) {
	c.documentID = documentID
	c.messages = nil
	if summary != "" {
		c.messages = append(c.messages, newMessage(RoleSystem, summary))
	}
	c.persist()
}

// EnsureSeed adds the summary banner to an empty log.
func (c *Conversation) EnsureSeed(summary string) bool {
	if len(c.messages) > 0 || summary == "" {
		return false
	}
	c.Append(newMessage(RoleSystem, summary))
	return true
}

// seededOnly reports whether the log holds nothing but the banner for summary.
func (c *Conversation) seededOnly(summary string) bool {
	if summary == "" {
		return len(c.messages) == 0
	}
	return len(c.messages) == 1 &&
		c.messages[0].Role == RoleSystem &&
		c.messages[0].Content == summary
}

// Transcript converts the log into an archive record.
func (c *Conversation) Transcript() session.Transcript {
	t := session.Transcript{DocumentID: c.documentID}
	for _, m := range c.messages {
		if m.IsLoading || m.Role == RoleSystem {
			continue
		}
		t.Messages = append(t.Messages, session.TranscriptLine{
			Role:    string(m.Role),
			Content: m.Content,
			IsError: m.IsError,
		})
	}
	return t
}

func (c *Conversation) index(id string) int {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Conversation) persist() {
	raw, err := json.Marshal(storedConversation{DocumentID: c.documentID, Messages: c.messages})
	if err != nil {
		c.logger.Error("encode conversation", zap.Error(err))
		return
	}
	if err := c.store.Set(session.KeyChatMessages, string(raw)); err != nil {
		c.logger.Error("persist conversation", zap.Error(err))
	}
}
