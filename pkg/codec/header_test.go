package codec

import (
	"encoding/binary"
	"errors"
	"testing"
)

func validHeader() *Header {
	return &Header{
		Version:       Version,
		Flags:         FlagChecksums,
		FormatVersion: FormatVersion,
		Metadata:      Section{Offset: HeaderSize, Length: 128, CRC32: 0xDEADBEEF},
		Structured:    Section{Offset: HeaderSize + 128, Length: 4096, CRC32: 0xCAFEF00D},
	}
}

func TestHeaderCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewHeaderCodec()

	testCases := []struct {
		name   string
		mutate func(*Header)
	}{
		{
			name:   "typical sections",
			mutate: func(h *Header) {},
		},
		{
			name: "empty metadata section",
			mutate: func(h *Header) {
				h.Metadata.Length = 0
				h.Structured.Offset = HeaderSize
			},
		},
		{
			name: "no checksums",
			mutate: func(h *Header) {
				h.Flags = 0
				h.Metadata.CRC32 = 0
				h.Structured.CRC32 = 0
			},
		},
		{
			name: "large sections",
			mutate: func(h *Header) {
				h.Metadata.Length = 1 << 20
				h.Structured.Offset = HeaderSize + 1<<20
				h.Structured.Length = 1 << 32
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validHeader()
			tc.mutate(in)

			encoded, err := codec.Encode(in)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(encoded) != HeaderSize {
				t.Fatalf("encoded size = %d, want %d", len(encoded), HeaderSize)
			}

			out, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if *out != *in {
				t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
			}
		})
	}
}

func TestHeaderCodec_DecodeBadMagic(t *testing.T) {
	codec := NewHeaderCodec()

	encoded, err := codec.Encode(validHeader())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	copy(encoded[0:4], "JPEG")

	_, err = codec.Decode(encoded)
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestHeaderCodec_DecodeTruncated(t *testing.T) {
	codec := NewHeaderCodec()

	encoded, err := codec.Encode(validHeader())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for _, n := range []int{0, 4, HeaderSize - 1} {
		_, err := codec.Decode(encoded[:n])
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("Decode(%d bytes): expected ErrTruncated, got %v", n, err)
		}
	}
}

func TestHeaderCodec_DecodeUnsupportedVersion(t *testing.T) {
	codec := NewHeaderCodec()

	encoded, err := codec.Encode(validHeader())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	encoded[4] = 99
	if _, err := codec.Decode(encoded); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("container version 99: expected ErrUnsupportedVersion, got %v", err)
	}

	encoded[4] = Version
	binary.LittleEndian.PutUint32(encoded[8:], 7)
	if _, err := codec.Decode(encoded); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("format version 7: expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestHeaderCodec_BadOffsets(t *testing.T) {
	codec := NewHeaderCodec()

	testCases := []struct {
		name   string
		mutate func(*Header)
	}{
		{
			name:   "metadata inside header",
			mutate: func(h *Header) { h.Metadata.Offset = 10 },
		},
		{
			name:   "sections overlap",
			mutate: func(h *Header) { h.Structured.Offset = h.Metadata.Offset + 1 },
		},
		{
			name: "metadata length overflows",
			mutate: func(h *Header) {
				h.Metadata.Length = ^uint64(0)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := validHeader()
			tc.mutate(h)
			if _, err := codec.Encode(h); !errors.Is(err, ErrBadOffsets) {
				t.Errorf("expected ErrBadOffsets, got %v", err)
			}
		})
	}
}

func TestHeader_CheckBounds(t *testing.T) {
	h := validHeader()

	if err := h.CheckBounds(int64(h.TotalSize())); err != nil {
		t.Errorf("exact file size should pass: %v", err)
	}
	if err := h.CheckBounds(int64(h.TotalSize()) - 1); !errors.Is(err, ErrBadOffsets) {
		t.Errorf("short file: expected ErrBadOffsets, got %v", err)
	}
}
