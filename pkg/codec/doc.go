// Package codec provides the fixed-size header codec for the LLMD
// container format.
//
// Every LLMD file opens with a 52-byte header that identifies the file
// and locates its two payload sections. Headers are serialized in a
// binary format with the following structure:
//
//	[Magic(4)][Version(1)][Flags(1)][Reserved(2)][FormatVersion(4)]
//	[MetaOffset(8)][MetaLength(8)][StructOffset(8)][StructLength(8)]
//	[MetaCRC32(4)][StructCRC32(4)]
//
// Fields:
//   - Magic: the ASCII bytes "LLMD"
//   - Version: container version, currently 1
//   - Flags: bit 0 set when the per-section CRC32 fields are populated
//   - FormatVersion: section layout version, currently 1 (little-endian)
//   - MetaOffset/MetaLength: byte range of the YAML metadata section
//   - StructOffset/StructLength: byte range of the embedded SQLite section
//   - MetaCRC32/StructCRC32: advisory CRC32 (IEEE) over each section's bytes
//
// All multi-byte integers are little-endian.
//
// # Checksums
//
// The section checksums are advisory. A reader may verify them to detect
// bit rot, but their absence (flag bit clear) is not an error.
//
// # Validation
//
// Decode rejects headers it cannot fully understand: wrong magic bytes,
// an unknown container or format version, or fewer bytes than the fixed
// header size. Section layout is validated structurally at decode time
// (sections must start after the header and must not overlap);
// Header.CheckBounds additionally pins both sections inside the actual
// file length before any read is attempted.
package codec
