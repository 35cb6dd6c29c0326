package model

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// Recognized message roles. Role is a string tag so extensible
// deployments can carry roles outside the closed set; the validator
// decides whether those are accepted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleFunction  = "function"
)

// Metadata holds the human-readable header of a conversation.
type Metadata struct {
	Version      string         // Format version string, e.g. "0.1"
	CreatedAt    time.Time      // Conversation creation instant
	Participants []string       // Ordered participant identifiers
	Title        string         // Optional display title
	Description  string         // Optional free-form description
	Tags         []string       // Optional classification tags
	Language     string         // Optional BCP-47 language tag
	ModelInfo    map[string]any // Optional model details (name, settings)
	Extensions   map[string]any // Unrecognized keys, preserved verbatim
}

// Message is a single dialogue turn. Messages exist only inside a
// Conversation; their slice position at write time is the semantic order.
type Message struct {
	ID          string         // Unique within the conversation
	Role        string         // One of the Role constants or an extension tag
	Content     string         // Message text, never nil-equivalent
	Timestamp   time.Time      // Authoring instant
	ParentID    string         // Optional threading parent, empty for none
	Attachments []string       // IDs of attachments owned by this message
	Metadata    map[string]any // Optional per-message extras
}

// Attachment is binary or referenced content owned by a single message.
// Exactly one of Data and Ref should be set.
type Attachment struct {
	ID        string         // Unique within the conversation
	MessageID string         // Owning message
	Filename  string         // Original filename, optional for Ref
	MediaType string         // MIME type
	Size      int64          // Payload size in bytes, 0 when unknown
	Data      []byte         // Inline payload
	Ref       string         // External path or URI
	Checksum  string         // Optional integrity hint
	CreatedAt time.Time      // Optional creation instant
	Metadata  map[string]any // Optional extras
}

// Inline reports whether the attachment carries its payload in the file.
func (a *Attachment) Inline() bool {
	return a.Ref == ""
}

// Conversation is the top-level aggregate: one metadata record plus the
// ordered message sequence and every attachment reachable from it.
// It is not safe for concurrent mutation.
type Conversation struct {
	meta        Metadata
	messages    []Message
	attachments []Attachment
}

// New creates an empty conversation with the given metadata.
func New(meta Metadata) *Conversation {
	return &Conversation{meta: meta}
}

// Load assembles a conversation from already-decoded parts. Used by the
// parser; callers building conversations by hand should use New and the
// mutators instead.
func Load(meta Metadata, messages []Message, attachments []Attachment) *Conversation {
	return &Conversation{meta: meta, messages: messages, attachments: attachments}
}

// Metadata returns the conversation metadata.
func (c *Conversation) Metadata() Metadata {
	return c.meta
}

// SetMetadata replaces the conversation metadata.
func (c *Conversation) SetMetadata(meta Metadata) {
	c.meta = meta
}

// Messages returns the messages in dialogue order. The returned slice is
// the conversation's own backing storage; callers must not reorder it.
func (c *Conversation) Messages() []Message {
	return c.messages
}

// Attachments returns all attachments owned by the conversation.
func (c *Conversation) Attachments() []Attachment {
	return c.attachments
}

// AppendMessage adds a message at the end of the dialogue. An empty ID is
// filled with a fresh ksuid. Uniqueness and ordering are validated at the
// next write, not here.
func (c *Conversation) AppendMessage(msg Message) string {
	if msg.ID == "" {
		msg.ID = NewMessageID()
	}
	c.messages = append(c.messages, msg)
	return msg.ID
}

// UpdateMessage replaces the message with the given id in place,
// preserving its position in the dialogue order.
func (c *Conversation) UpdateMessage(id string, msg Message) error {
	for i := range c.messages {
		if c.messages[i].ID == id {
			msg.ID = id
			c.messages[i] = msg
			return nil
		}
	}
	return fmt.Errorf("message %q not found", id)
}

// AddAttachment attaches content to an existing message. An empty
// attachment ID is filled with a fresh ksuid. The attachment id is
// recorded on the owning message.
func (c *Conversation) AddAttachment(messageID string, att Attachment) (string, error) {
	var msg *Message
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			msg = &c.messages[i]
			break
		}
	}
	if msg == nil {
		return "", fmt.Errorf("message %q not found", messageID)
	}

	if att.ID == "" {
		att.ID = NewAttachmentID()
	}
	att.MessageID = messageID
	if att.Size == 0 && len(att.Data) > 0 {
		att.Size = int64(len(att.Data))
	}
	c.attachments = append(c.attachments, att)
	msg.Attachments = append(msg.Attachments, att.ID)
	return att.ID, nil
}

// NewMessageID mints a message identifier.
func NewMessageID() string {
	return "msg_" + ksuid.New().String()
}

// NewAttachmentID mints an attachment identifier.
func NewAttachmentID() string {
	return "att_" + ksuid.New().String()
}
