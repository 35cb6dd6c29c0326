package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic identifies an LLMD container file.
var Magic = []byte("LLMD")

const (
	// HeaderSize is the fixed size of the container header in bytes.
	HeaderSize = 52

	// Version is the container version this codec understands.
	Version = 1

	// FormatVersion is the section layout version this codec understands.
	FormatVersion = 1

	// FlagChecksums marks that the per-section CRC32 fields are populated.
	FlagChecksums = 1 << 0
)

// Errors
var (
	ErrBadMagic           = &HeaderError{"magic bytes do not match LLMD"}
	ErrUnsupportedVersion = &HeaderError{"unsupported container version"}
	ErrTruncated          = &HeaderError{"data shorter than fixed header size"}
	ErrBadOffsets         = &HeaderError{"section offsets describe an invalid layout"}
)

// HeaderError represents a header encoding or decoding error
type HeaderError struct {
	Message string
}

func (e *HeaderError) Error() string {
	return e.Message
}

// Section locates a contiguous byte range within the file
type Section struct {
	Offset uint64 // Byte offset from the start of the file
	Length uint64 // Section length in bytes
	CRC32  uint32 // Advisory checksum over the section bytes
}

// End returns the offset one past the last byte of the section.
func (s Section) End() uint64 {
	return s.Offset + s.Length
}

// Header is the fixed-layout record at the start of every LLMD file
// Format: [Magic(4)][Version(1)][Flags(1)][Reserved(2)][FormatVersion(4)]
// [MetaOffset(8)][MetaLength(8)][StructOffset(8)][StructLength(8)]
// [MetaCRC32(4)][StructCRC32(4)]
type Header struct {
	Version       uint8   // Container version
	Flags         uint8   // Feature flags
	FormatVersion uint32  // Section layout version
	Metadata      Section // YAML metadata section
	Structured    Section // Embedded SQLite section
}

// HeaderCodec handles serialization and deserialization of container headers
type HeaderCodec struct{}

// NewHeaderCodec creates a new header codec instance
func NewHeaderCodec() *HeaderCodec {
	return &HeaderCodec{}
}

// Encode serializes a header into its fixed binary form.
// All integers are little-endian.
func (c *HeaderCodec) Encode(h *Header) ([]byte, error) {
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if err := checkLayout(h); err != nil {
		return nil, err
	}

	buf := make([]byte, HeaderSize)

	copy(buf[0:4], Magic)
	buf[4] = h.Version
	buf[5] = h.Flags
	// buf[6:8] reserved, zero
	binary.LittleEndian.PutUint32(buf[8:], h.FormatVersion)
	binary.LittleEndian.PutUint64(buf[12:], h.Metadata.Offset)
	binary.LittleEndian.PutUint64(buf[20:], h.Metadata.Length)
	binary.LittleEndian.PutUint64(buf[28:], h.Structured.Offset)
	binary.LittleEndian.PutUint64(buf[36:], h.Structured.Length)
	binary.LittleEndian.PutUint32(buf[44:], h.Metadata.CRC32)
	binary.LittleEndian.PutUint32(buf[48:], h.Structured.CRC32)

	return buf, nil
}

// Decode deserializes a binary header, rejecting anything this codec
// does not understand. Unknown versions are a hard failure rather than
// a best-effort parse.
func (c *HeaderCodec) Decode(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d < %d bytes", ErrTruncated, len(data), HeaderSize)
	}
	if !bytes.Equal(data[0:4], Magic) {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, data[0:4])
	}

	h := &Header{}
	h.Version = data[4]
	h.Flags = data[5]
	h.FormatVersion = binary.LittleEndian.Uint32(data[8:12])
	h.Metadata.Offset = binary.LittleEndian.Uint64(data[12:20])
	h.Metadata.Length = binary.LittleEndian.Uint64(data[20:28])
	h.Structured.Offset = binary.LittleEndian.Uint64(data[28:36])
	h.Structured.Length = binary.LittleEndian.Uint64(data[36:44])
	h.Metadata.CRC32 = binary.LittleEndian.Uint32(data[44:48])
	h.Structured.CRC32 = binary.LittleEndian.Uint32(data[48:52])

	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d", ErrUnsupportedVersion, h.FormatVersion)
	}
	if err := checkLayout(h); err != nil {
		return nil, err
	}

	return h, nil
}

// HasChecksums reports whether the advisory section checksums are populated.
func (h *Header) HasChecksums() bool {
	return h.Flags&FlagChecksums != 0
}

// TotalSize returns the file size implied by the header's section layout.
func (h *Header) TotalSize() uint64 {
	return h.Structured.End()
}

// CheckBounds verifies that both sections lie fully within a file of the
// given length. Used before any seek so a hostile header can never cause
// an out-of-bounds read.
func (h *Header) CheckBounds(fileSize int64) error {
	if fileSize < 0 || h.Metadata.End() > uint64(fileSize) {
		return fmt.Errorf("%w: metadata section [%d,%d) exceeds file size %d",
			ErrBadOffsets, h.Metadata.Offset, h.Metadata.End(), fileSize)
	}
	if h.Structured.End() > uint64(fileSize) {
		return fmt.Errorf("%w: structured section [%d,%d) exceeds file size %d",
			ErrBadOffsets, h.Structured.Offset, h.Structured.End(), fileSize)
	}
	return nil
}

// checkLayout enforces the section ordering invariants that hold for
// every valid header regardless of file size: sections start after the
// header, do not overlap, and do not overflow uint64 arithmetic.
func checkLayout(h *Header) error {
	if h.Metadata.Offset < HeaderSize {
		return fmt.Errorf("%w: metadata section offset %d inside header", ErrBadOffsets, h.Metadata.Offset)
	}
	if h.Metadata.End() < h.Metadata.Offset {
		return fmt.Errorf("%w: metadata section length overflows", ErrBadOffsets)
	}
	if h.Structured.Offset < h.Metadata.End() {
		return fmt.Errorf("%w: structured section at %d overlaps metadata section ending at %d",
			ErrBadOffsets, h.Structured.Offset, h.Metadata.End())
	}
	if h.Structured.End() < h.Structured.Offset {
		return fmt.Errorf("%w: structured section length overflows", ErrBadOffsets)
	}
	return nil
}
