package llmd

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/llmd-format/llmd/pkg/codec"
	"github.com/llmd-format/llmd/pkg/metadata"
	"github.com/llmd-format/llmd/pkg/model"
	"github.com/llmd-format/llmd/pkg/store"
	"github.com/llmd-format/llmd/pkg/validate"
)

// WriterConfig holds configuration for the writer
type WriterConfig struct {
	// DisableChecksums leaves the advisory per-section CRC32 fields
	// unpopulated. Checksums are written by default.
	DisableChecksums bool

	// AcceptRole widens the accepted role set beyond the closed default.
	AcceptRole validate.RoleFunc

	// TempDir is passed through to the structured store adapter and used
	// for the atomic-rename staging file.
	TempDir string
}

// Writer turns a validated conversation into an LLMD byte stream. The
// payload sections are serialized first; the header is synthesized last
// from their sizes.
type Writer struct {
	config   WriterConfig
	headers  *codec.HeaderCodec
	metadata *metadata.Codec
	store    *store.Adapter
}

// NewWriter creates a new writer instance
func NewWriter(config WriterConfig) *Writer {
	return &Writer{
		config:   config,
		headers:  codec.NewHeaderCodec(),
		metadata: metadata.NewCodec(),
		store:    store.NewAdapter(store.AdapterConfig{TempDir: config.TempDir}),
	}
}

// Write serializes the conversation into a complete LLMD container.
// Validation is strict: a freshly authored conversation with duplicate
// ids, dangling attachments or regressing timestamps is never written.
func (w *Writer) Write(conv *model.Conversation) ([]byte, error) {
	meta := conv.Metadata()
	messages := conv.Messages()
	attachments := conv.Attachments()

	provisional := &codec.Header{Version: codec.Version, FormatVersion: codec.FormatVersion}
	validator := validate.NewValidator(validate.Config{
		StrictTimestamps: true,
		AcceptRole:       w.config.AcceptRole,
	})
	if err := validator.Validate(provisional, meta, messages, attachments, -1); err != nil {
		return nil, stepErr(StepValidate, err)
	}

	metaBytes, err := w.metadata.Serialize(meta)
	if err != nil {
		return nil, stepErr(StepMetadata, err)
	}

	structBytes, err := w.store.Write(messages, attachments)
	if err != nil {
		return nil, stepErr(StepStructured, err)
	}

	header := &codec.Header{
		Version:       codec.Version,
		FormatVersion: codec.FormatVersion,
		Metadata: codec.Section{
			Offset: codec.HeaderSize,
			Length: uint64(len(metaBytes)),
		},
		Structured: codec.Section{
			Offset: codec.HeaderSize + uint64(len(metaBytes)),
			Length: uint64(len(structBytes)),
		},
	}
	if !w.config.DisableChecksums {
		header.Flags |= codec.FlagChecksums
		header.Metadata.CRC32 = crc32.ChecksumIEEE(metaBytes)
		header.Structured.CRC32 = crc32.ChecksumIEEE(structBytes)
	}

	headerBytes, err := w.headers.Encode(header)
	if err != nil {
		return nil, stepErr(StepHeader, err)
	}

	out := make([]byte, 0, len(headerBytes)+len(metaBytes)+len(structBytes))
	out = append(out, headerBytes...)
	out = append(out, metaBytes...)
	out = append(out, structBytes...)
	return out, nil
}

// WriteFile writes the conversation to path atomically: the container is
// staged under a temporary name in the same directory and renamed into
// place, so a partial file is never visible at path.
func (w *Writer) WriteFile(conv *model.Conversation, path string) error {
	data, err := w.Write(conv)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".llmd-staging-*")
	if err != nil {
		return stepErr(StepIO, fmt.Errorf("stage in %s: %w", dir, err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return stepErr(StepIO, fmt.Errorf("write staging file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return stepErr(StepIO, fmt.Errorf("close staging file: %w", err))
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return stepErr(StepIO, fmt.Errorf("chmod staging file: %w", err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return stepErr(StepIO, fmt.Errorf("rename into place: %w", err))
	}
	return nil
}
