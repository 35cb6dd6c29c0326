// Package llmd reads and writes the LLMD container format for
// multi-turn dialogue records.
//
// An LLMD file is three byte blocks laid out back to back: a fixed
// binary header, a human-readable YAML metadata section, and an embedded
// SQLite database holding the ordered messages and their attachments.
// The header is written last (its section offsets depend on the payload
// sizes) but stored first.
//
// # Reading and writing
//
// The package-level functions cover the common cases:
//
//	conv, err := llmd.ParseFile("conversation.llmd")
//	if err != nil {
//	    return err
//	}
//	for _, msg := range conv.Messages() {
//	    fmt.Printf("%s: %s\n", msg.Role, msg.Content)
//	}
//
//	err = llmd.WriteFile(conv, "copy.llmd")
//
// Explicit Parser and Writer instances expose the knobs: lenient versus
// strict timestamp validation, checksum verification, and a widened role
// set. Instances hold no shared state, so independent parses and writes
// never interfere.
//
// # Failure model
//
// Parsing is all or nothing: the first failing component aborts the
// pipeline and its error is surfaced wrapped in a StepError naming the
// stage (header, metadata, structured, validate). Writing is atomic at
// the file level: WriteFile stages the full container under a temporary
// name and renames it into place, so a crashed write never leaves a
// partial file at the target path.
//
// # Round-trip guarantee
//
// For any conversation that validates, parsing its written form yields a
// semantically equal conversation: same metadata (including unrecognized
// extension keys, preserved verbatim), same messages in the same order,
// same attachments. The bytes themselves are not canonical; two writes
// of the same conversation may differ.
package llmd
