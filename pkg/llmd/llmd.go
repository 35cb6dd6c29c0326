package llmd

import "github.com/llmd-format/llmd/pkg/model"

// Parse decodes an LLMD container from bytes with default settings.
func Parse(data []byte) (*model.Conversation, error) {
	return NewParser(ParserConfig{}).Parse(data)
}

// ParseFile decodes the LLMD file at path with default settings.
func ParseFile(path string) (*model.Conversation, error) {
	return NewParser(ParserConfig{}).ParseFile(path)
}

// Write serializes a conversation with default settings.
func Write(conv *model.Conversation) ([]byte, error) {
	return NewWriter(WriterConfig{}).Write(conv)
}

// WriteFile writes a conversation to path atomically with defaults.
func WriteFile(conv *model.Conversation, path string) error {
	return NewWriter(WriterConfig{}).WriteFile(conv, path)
}

// Verify runs the strictest read-side checks over a container: checksum
// verification plus hard timestamp ordering. It returns the first
// failure, or nil when the container is fully valid.
func Verify(data []byte) error {
	_, err := NewParser(ParserConfig{
		StrictTimestamps: true,
		VerifyChecksums:  true,
	}).Parse(data)
	return err
}
