package llmd

import (
	"fmt"
	"hash/crc32"
	"os"

	"github.com/llmd-format/llmd/pkg/codec"
	"github.com/llmd-format/llmd/pkg/metadata"
	"github.com/llmd-format/llmd/pkg/model"
	"github.com/llmd-format/llmd/pkg/store"
	"github.com/llmd-format/llmd/pkg/validate"
)

// ParserConfig holds configuration for the parser
type ParserConfig struct {
	// StrictTimestamps rejects out-of-order message timestamps instead
	// of accepting them with a warning. Off by default so files from
	// older producers still parse.
	StrictTimestamps bool

	// VerifyChecksums fails the parse when a populated section checksum
	// does not match the section bytes. Off by default: checksums are
	// advisory.
	VerifyChecksums bool

	// AcceptRole widens the accepted role set beyond the closed default.
	AcceptRole validate.RoleFunc

	// TempDir is passed through to the structured store adapter.
	TempDir string
}

// Parser turns a byte stream into a validated conversation. A Parser
// holds no state between calls beyond the warnings of the last parse;
// independent parses can use independent Parser instances freely.
type Parser struct {
	config   ParserConfig
	headers  *codec.HeaderCodec
	metadata *metadata.Codec
	store    *store.Adapter
	warnings []string
}

// NewParser creates a new parser instance
func NewParser(config ParserConfig) *Parser {
	return &Parser{
		config:   config,
		headers:  codec.NewHeaderCodec(),
		metadata: metadata.NewCodec(),
		store:    store.NewAdapter(store.AdapterConfig{TempDir: config.TempDir}),
	}
}

// Warnings returns advisory findings from the most recent Parse call,
// such as out-of-order timestamps accepted in lenient mode.
func (p *Parser) Warnings() []string {
	return p.warnings
}

// ParseFile parses the LLMD file at path.
func (p *Parser) ParseFile(path string) (*model.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stepErr(StepIO, fmt.Errorf("read %s: %w", path, err))
	}
	return p.Parse(data)
}

// Parse decodes and validates a complete LLMD container. Any failure
// aborts the whole parse; there is no partial result.
func (p *Parser) Parse(data []byte) (*model.Conversation, error) {
	p.warnings = nil

	header, err := p.headers.Decode(data)
	if err != nil {
		return nil, stepErr(StepHeader, err)
	}
	if err := header.CheckBounds(int64(len(data))); err != nil {
		return nil, stepErr(StepHeader, err)
	}

	metaBytes := data[header.Metadata.Offset:header.Metadata.End()]
	structBytes := data[header.Structured.Offset:header.Structured.End()]

	if p.config.VerifyChecksums && header.HasChecksums() {
		if got := crc32.ChecksumIEEE(metaBytes); got != header.Metadata.CRC32 {
			return nil, stepErr(StepMetadata, fmt.Errorf("%w: metadata section crc %#x, header says %#x",
				ErrChecksumMismatch, got, header.Metadata.CRC32))
		}
		if got := crc32.ChecksumIEEE(structBytes); got != header.Structured.CRC32 {
			return nil, stepErr(StepStructured, fmt.Errorf("%w: structured section crc %#x, header says %#x",
				ErrChecksumMismatch, got, header.Structured.CRC32))
		}
	}

	meta, err := p.metadata.Deserialize(metaBytes)
	if err != nil {
		return nil, stepErr(StepMetadata, err)
	}

	messages, attachments, err := p.store.Read(structBytes)
	if err != nil {
		return nil, stepErr(StepStructured, err)
	}

	validator := validate.NewValidator(validate.Config{
		StrictTimestamps: p.config.StrictTimestamps,
		AcceptRole:       p.config.AcceptRole,
	})
	if err := validator.Validate(header, meta, messages, attachments, int64(len(data))); err != nil {
		return nil, stepErr(StepValidate, err)
	}
	p.warnings = validator.Warnings()

	return model.Load(meta, messages, attachments), nil
}
