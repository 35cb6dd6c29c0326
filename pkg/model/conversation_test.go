package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta() Metadata {
	return Metadata{
		Version:      "0.1",
		CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Participants: []string{"user", "assistant"},
		Title:        "Test Conversation",
	}
}

func TestConversation_AppendMessage(t *testing.T) {
	conv := New(testMeta())

	id1 := conv.AppendMessage(Message{ID: "msg_1", Role: RoleUser, Content: "hello", Timestamp: time.Now()})
	id2 := conv.AppendMessage(Message{Role: RoleAssistant, Content: "hi", Timestamp: time.Now()})

	assert.Equal(t, "msg_1", id1)
	assert.NotEmpty(t, id2, "empty id should be minted")

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, id2, msgs[1].ID)
}

func TestConversation_UpdateMessage(t *testing.T) {
	conv := New(testMeta())
	conv.AppendMessage(Message{ID: "msg_1", Role: RoleUser, Content: "first", Timestamp: time.Now()})
	conv.AppendMessage(Message{ID: "msg_2", Role: RoleAssistant, Content: "second", Timestamp: time.Now()})

	err := conv.UpdateMessage("msg_1", Message{Role: RoleUser, Content: "edited", Timestamp: time.Now()})
	require.NoError(t, err)

	msgs := conv.Messages()
	assert.Equal(t, "msg_1", msgs[0].ID, "id survives update")
	assert.Equal(t, "edited", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content, "other messages untouched")

	err = conv.UpdateMessage("msg_404", Message{})
	assert.Error(t, err)
}

func TestConversation_AddAttachment(t *testing.T) {
	conv := New(testMeta())
	conv.AppendMessage(Message{ID: "msg_1", Role: RoleUser, Content: "see attached", Timestamp: time.Now()})

	id, err := conv.AddAttachment("msg_1", Attachment{
		Filename:  "notes.txt",
		MediaType: "text/plain",
		Data:      []byte("hello world"),
	})
	require.NoError(t, err)

	atts := conv.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, id, atts[0].ID)
	assert.Equal(t, "msg_1", atts[0].MessageID)
	assert.Equal(t, int64(11), atts[0].Size, "size inferred from inline data")
	assert.True(t, atts[0].Inline())

	require.Len(t, conv.Messages()[0].Attachments, 1)
	assert.Equal(t, id, conv.Messages()[0].Attachments[0])

	_, err = conv.AddAttachment("msg_404", Attachment{})
	assert.Error(t, err)
}

func TestConversation_AddAttachmentExternalRef(t *testing.T) {
	conv := New(testMeta())
	conv.AppendMessage(Message{ID: "msg_1", Role: RoleUser, Content: "link", Timestamp: time.Now()})

	_, err := conv.AddAttachment("msg_1", Attachment{
		MediaType: "image/png",
		Ref:       "https://example.com/diagram.png",
	})
	require.NoError(t, err)
	assert.False(t, conv.Attachments()[0].Inline())
}
