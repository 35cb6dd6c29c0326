package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmd-format/llmd/pkg/model"
)

func sampleMeta() model.Metadata {
	return model.Metadata{
		Version:      "0.1",
		CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Participants: []string{"user", "assistant"},
		Title:        "My Conversation",
		Tags:         []string{"demo", "test"},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec()

	text, err := codec.Serialize(sampleMeta())
	require.NoError(t, err)

	got, err := codec.Deserialize(text)
	require.NoError(t, err)

	assert.Equal(t, "0.1", got.Version)
	assert.True(t, got.CreatedAt.Equal(sampleMeta().CreatedAt))
	assert.Equal(t, []string{"user", "assistant"}, got.Participants)
	assert.Equal(t, "My Conversation", got.Title)
	assert.Equal(t, []string{"demo", "test"}, got.Tags)
}

func TestCodec_ExtensionKeysPreserved(t *testing.T) {
	codec := NewCodec()

	in := []byte(`version: "0.1"
created_at: "2024-01-15T10:30:00Z"
participants:
  - user
  - assistant
x_exporter: chatdump 2.3
x_custom:
  nested: value
`)

	meta, err := codec.Deserialize(in)
	require.NoError(t, err)
	require.Contains(t, meta.Extensions, "x_exporter")
	assert.Equal(t, "chatdump 2.3", meta.Extensions["x_exporter"])

	// Re-serialize without touching the extensions and parse again.
	out, err := codec.Serialize(meta)
	require.NoError(t, err)

	again, err := codec.Deserialize(out)
	require.NoError(t, err)
	assert.Equal(t, meta.Extensions["x_exporter"], again.Extensions["x_exporter"])
	assert.Equal(t, meta.Extensions["x_custom"], again.Extensions["x_custom"])
}

func TestCodec_MissingRequiredFields(t *testing.T) {
	codec := NewCodec()

	testCases := []struct {
		name string
		text string
	}{
		{
			name: "missing version",
			text: "created_at: \"2024-01-15T10:30:00Z\"\nparticipants: [user]\n",
		},
		{
			name: "missing created_at",
			text: "version: \"0.1\"\nparticipants: [user]\n",
		},
		{
			name: "missing participants",
			text: "version: \"0.1\"\ncreated_at: \"2024-01-15T10:30:00Z\"\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Deserialize([]byte(tc.text))
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestCodec_MalformedTimestamp(t *testing.T) {
	codec := NewCodec()

	_, err := codec.Deserialize([]byte(`version: "0.1"
created_at: "yesterday-ish"
participants: [user]
`))
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestCodec_DuplicateParticipant(t *testing.T) {
	codec := NewCodec()

	_, err := codec.Deserialize([]byte(`version: "0.1"
created_at: "2024-01-15T10:30:00Z"
participants: [user, assistant, user]
`))
	assert.ErrorIs(t, err, ErrDuplicateParticipant)

	meta := sampleMeta()
	meta.Participants = []string{"user", "user"}
	_, err = codec.Serialize(meta)
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}

func TestCodec_SyntaxError(t *testing.T) {
	codec := NewCodec()

	_, err := codec.Deserialize([]byte("version: [unclosed\n"))
	assert.ErrorIs(t, err, ErrSyntax)

	// A valid YAML scalar is still not a mapping.
	_, err = codec.Deserialize([]byte("just a string\n"))
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestCodec_FieldAliases(t *testing.T) {
	codec := NewCodec()

	meta, err := codec.Deserialize([]byte(`llmd_version: "0.1"
created: "2024-01-15T10:30:00Z"
participants: [user, assistant]
`))
	require.NoError(t, err)
	assert.Equal(t, "0.1", meta.Version)
	assert.Equal(t, 2024, meta.CreatedAt.Year())
	assert.Empty(t, meta.Extensions, "aliases are recognized keys, not extensions")
}

func TestCodec_LeadingNulBytes(t *testing.T) {
	codec := NewCodec()

	text := "\x00\x00version: \"0.1\"\ncreated_at: \"2024-01-15T10:30:00Z\"\nparticipants: [user]\n"
	meta, err := codec.Deserialize([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, "0.1", meta.Version)
}
