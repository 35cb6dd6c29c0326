package metadata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/llmd-format/llmd/pkg/model"
)

// Errors
var (
	ErrMissingField         = &MetadataError{"missing required metadata field"}
	ErrMalformedTimestamp   = &MetadataError{"timestamp is not an absolute point in time"}
	ErrSyntax               = &MetadataError{"metadata section is not valid YAML"}
	ErrDuplicateParticipant = &MetadataError{"duplicate participant"}
)

// MetadataError represents a metadata serialization or deserialization error
type MetadataError struct {
	Message string
}

func (e *MetadataError) Error() string {
	return e.Message
}

// knownKeys are the recognized metadata keys. Anything else found at
// parse time is an extension key and must survive the next write
// unchanged.
var knownKeys = map[string]bool{
	"version":      true,
	"created_at":   true,
	"participants": true,
	"title":        true,
	"description":  true,
	"tags":         true,
	"language":     true,
	"model_info":   true,
}

// Codec serializes conversation metadata to and from the YAML section.
type Codec struct{}

// NewCodec creates a new metadata codec instance
func NewCodec() *Codec {
	return &Codec{}
}

// Serialize renders metadata as the YAML text of the metadata section.
// Recognized keys are emitted in canonical order, extension keys after
// them in sorted order.
func (c *Codec) Serialize(meta model.Metadata) ([]byte, error) {
	if err := checkRequired(meta); err != nil {
		return nil, err
	}
	if dup := firstDuplicate(meta.Participants); dup != "" {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, dup)
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value any) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valNode := &yaml.Node{}
		if err := valNode.Encode(value); err != nil {
			return fmt.Errorf("encode metadata key %q: %w", key, err)
		}
		root.Content = append(root.Content, keyNode, valNode)
		return nil
	}

	if err := add("version", meta.Version); err != nil {
		return nil, err
	}
	if err := add("created_at", meta.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := add("participants", meta.Participants); err != nil {
		return nil, err
	}
	if meta.Title != "" {
		if err := add("title", meta.Title); err != nil {
			return nil, err
		}
	}
	if meta.Description != "" {
		if err := add("description", meta.Description); err != nil {
			return nil, err
		}
	}
	if len(meta.Tags) > 0 {
		if err := add("tags", meta.Tags); err != nil {
			return nil, err
		}
	}
	if meta.Language != "" {
		if err := add("language", meta.Language); err != nil {
			return nil, err
		}
	}
	if len(meta.ModelInfo) > 0 {
		if err := add("model_info", meta.ModelInfo); err != nil {
			return nil, err
		}
	}

	extKeys := make([]string, 0, len(meta.Extensions))
	for k := range meta.Extensions {
		if !knownKeys[k] {
			extKeys = append(extKeys, k)
		}
	}
	sort.Strings(extKeys)
	for _, k := range extKeys {
		if err := add(k, meta.Extensions[k]); err != nil {
			return nil, err
		}
	}

	return yaml.Marshal(root)
}

// Deserialize parses the YAML section into metadata, enforcing the
// metadata schema. Unrecognized keys land in Extensions verbatim.
func (c *Codec) Deserialize(data []byte) (model.Metadata, error) {
	var meta model.Metadata

	// Some producers pad the section start with NUL bytes.
	text := strings.TrimSpace(strings.TrimLeft(string(data), "\x00"))

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return meta, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if raw == nil {
		return meta, fmt.Errorf("%w: empty document", ErrSyntax)
	}

	// Field aliases written by older producers.
	if v, ok := raw["llmd_version"]; ok {
		if _, exists := raw["version"]; !exists {
			raw["version"] = v
		}
		delete(raw, "llmd_version")
	}
	if v, ok := raw["created"]; ok {
		if _, exists := raw["created_at"]; !exists {
			raw["created_at"] = v
		}
		delete(raw, "created")
	}

	for _, field := range []string{"version", "created_at", "participants"} {
		if _, ok := raw[field]; !ok {
			return meta, fmt.Errorf("%w: %q", ErrMissingField, field)
		}
	}

	var err error
	if meta.Version, err = stringValue(raw["version"]); err != nil {
		return meta, fmt.Errorf("version: %w", err)
	}
	if meta.CreatedAt, err = timeValue(raw["created_at"]); err != nil {
		return meta, err
	}
	if meta.Participants, err = stringListValue(raw["participants"]); err != nil {
		return meta, fmt.Errorf("participants: %w", err)
	}
	if dup := firstDuplicate(meta.Participants); dup != "" {
		return meta, fmt.Errorf("%w: %q", ErrDuplicateParticipant, dup)
	}

	if v, ok := raw["title"]; ok {
		if meta.Title, err = stringValue(v); err != nil {
			return meta, fmt.Errorf("title: %w", err)
		}
	}
	if v, ok := raw["description"]; ok {
		if meta.Description, err = stringValue(v); err != nil {
			return meta, fmt.Errorf("description: %w", err)
		}
	}
	if v, ok := raw["tags"]; ok {
		if meta.Tags, err = stringListValue(v); err != nil {
			return meta, fmt.Errorf("tags: %w", err)
		}
	}
	if v, ok := raw["language"]; ok {
		if meta.Language, err = stringValue(v); err != nil {
			return meta, fmt.Errorf("language: %w", err)
		}
	}
	if v, ok := raw["model_info"]; ok {
		info, ok := v.(map[string]any)
		if !ok {
			return meta, fmt.Errorf("%w: model_info must be a mapping", ErrSyntax)
		}
		meta.ModelInfo = info
	}

	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if meta.Extensions == nil {
			meta.Extensions = make(map[string]any)
		}
		meta.Extensions[k] = v
	}

	return meta, nil
}

func checkRequired(meta model.Metadata) error {
	if meta.Version == "" {
		return fmt.Errorf("%w: %q", ErrMissingField, "version")
	}
	if meta.CreatedAt.IsZero() {
		return fmt.Errorf("%w: %q", ErrMissingField, "created_at")
	}
	if meta.Participants == nil {
		return fmt.Errorf("%w: %q", ErrMissingField, "participants")
	}
	return nil
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

func stringValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrSyntax, v)
	}
	return s, nil
}

func stringListValue(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected list, got %T", ErrSyntax, v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string element, got %T", ErrSyntax, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// timeValue accepts the shapes the YAML decoder produces for created_at:
// a time.Time for plain timestamp scalars, or a string for quoted ones.
func timeValue(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, t)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("%w: got %T", ErrMalformedTimestamp, v)
	}
}
