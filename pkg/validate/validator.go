package validate

import (
	"fmt"
	"strings"

	"github.com/llmd-format/llmd/pkg/codec"
	"github.com/llmd-format/llmd/pkg/model"
)

// Errors
var (
	ErrSizeMismatch        = &ValidationError{"file size does not match header's implied total size"}
	ErrVersionSkew         = &ValidationError{"metadata version is incompatible with header version"}
	ErrDuplicateMessageID  = &ValidationError{"duplicate message identifier"}
	ErrOutOfOrderTimestamp = &ValidationError{"message timestamp earlier than its predecessor"}
	ErrDanglingAttachment  = &ValidationError{"attachment references a missing message"}
	ErrUnknownRole         = &ValidationError{"message role is not recognized"}
	ErrNoParticipants      = &ValidationError{"conversation has messages but no participants"}
)

// ValidationError represents a cross-section consistency failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RoleFunc decides whether a role outside the closed default set is
// acceptable. Returning false fails validation with ErrUnknownRole.
type RoleFunc func(role string) bool

// DefaultRoles is the closed role set accepted when no RoleFunc is supplied.
var DefaultRoles = map[string]bool{
	model.RoleUser:      true,
	model.RoleAssistant: true,
	model.RoleSystem:    true,
	model.RoleFunction:  true,
}

// Config holds configuration for the validator
type Config struct {
	// StrictTimestamps makes out-of-order timestamps a hard failure.
	// Writers must set this; parsers may leave it off to accept files
	// from older producers and collect warnings instead.
	StrictTimestamps bool

	// AcceptRole widens the role set beyond DefaultRoles. Nil means the
	// closed default set only.
	AcceptRole RoleFunc
}

// Validator cross-checks structural and referential invariants across
// header, metadata and structured data. Checks run in a fixed order and
// the first failure wins.
type Validator struct {
	config   Config
	warnings []string
}

// NewValidator creates a new validator instance
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// Warnings returns advisory findings collected by the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}

// Validate runs all consistency checks. fileSize is the actual byte
// length of the container; pass a negative value to skip the size check
// (validating a conversation that has not been written yet).
func (v *Validator) Validate(header *codec.Header, meta model.Metadata, messages []model.Message, attachments []model.Attachment, fileSize int64) error {
	v.warnings = nil

	if fileSize >= 0 && header != nil {
		if header.TotalSize() != uint64(fileSize) {
			return fmt.Errorf("%w: header implies %d bytes, file has %d",
				ErrSizeMismatch, header.TotalSize(), fileSize)
		}
	}

	if header != nil {
		if !versionCompatible(meta.Version, header.FormatVersion) {
			return fmt.Errorf("%w: metadata version %q, header format version %d",
				ErrVersionSkew, meta.Version, header.FormatVersion)
		}
	}

	if len(messages) > 0 && len(meta.Participants) == 0 {
		return ErrNoParticipants
	}

	seen := make(map[string]bool, len(messages))
	for _, msg := range messages {
		if seen[msg.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateMessageID, msg.ID)
		}
		seen[msg.ID] = true
	}

	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			if v.config.StrictTimestamps {
				return fmt.Errorf("%w: message %q at position %d",
					ErrOutOfOrderTimestamp, messages[i].ID, i)
			}
			v.warnings = append(v.warnings, fmt.Sprintf(
				"message %q at position %d has a timestamp earlier than its predecessor",
				messages[i].ID, i))
		}
	}

	attByID := make(map[string]bool, len(attachments))
	for _, att := range attachments {
		attByID[att.ID] = true
		if !seen[att.MessageID] {
			return fmt.Errorf("%w: attachment %q references message %q",
				ErrDanglingAttachment, att.ID, att.MessageID)
		}
	}
	for _, msg := range messages {
		for _, attID := range msg.Attachments {
			if !attByID[attID] {
				return fmt.Errorf("%w: message %q references attachment %q",
					ErrDanglingAttachment, msg.ID, attID)
			}
		}
	}

	for _, msg := range messages {
		if DefaultRoles[msg.Role] {
			continue
		}
		if v.config.AcceptRole != nil && v.config.AcceptRole(msg.Role) {
			continue
		}
		return fmt.Errorf("%w: message %q has role %q", ErrUnknownRole, msg.ID, msg.Role)
	}

	return nil
}

// versionCompatible pins the metadata version string to the header's
// format version family. Format version 1 covers the "0.x" and "1.x"
// metadata families.
func versionCompatible(metaVersion string, formatVersion uint32) bool {
	if metaVersion == "" {
		return false
	}
	major := metaVersion
	if i := strings.IndexByte(metaVersion, '.'); i >= 0 {
		major = metaVersion[:i]
	}
	switch formatVersion {
	case 1:
		return major == "0" || major == "1"
	default:
		return false
	}
}
