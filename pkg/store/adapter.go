package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/llmd-format/llmd/pkg/model"
)

const (
	// ApplicationID stamps the embedded database as an LLMD structured
	// section ("LLMD" in hex, stored in the SQLite header).
	ApplicationID = 0x4C4C4D44

	// SchemaVersion is the table layout version, recorded in the SQLite
	// user_version pragma. It moves in lockstep with the container's
	// format version.
	SchemaVersion = 1
)

// Errors
var (
	ErrSchemaMismatch   = &StoreError{"structured section schema does not match expected version"}
	ErrOrphanAttachment = &StoreError{"attachment references a message that does not exist"}
	ErrCorrupt          = &StoreError{"structured section failed integrity check"}
)

// StoreError represents a structured section read or write error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// AdapterConfig holds configuration for the structured store adapter
type AdapterConfig struct {
	TempDir string // Directory for scratch database files, "" = os default
}

// Adapter maps the in-memory message/attachment model to rows in the
// embedded SQLite section and back. The message write order is recorded
// in an explicit seq column; reads always re-sort on it, so dialogue
// order survives anything the engine does to physical row order.
type Adapter struct {
	config AdapterConfig
}

// NewAdapter creates a new structured store adapter
func NewAdapter(config AdapterConfig) *Adapter {
	return &Adapter{config: config}
}

// Write serializes messages and attachments into a standalone SQLite
// database image and returns its bytes.
func (a *Adapter) Write(messages []model.Message, attachments []model.Attachment) ([]byte, error) {
	path, cleanup, err := a.scratchFile()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open scratch database: %w", err)
	}

	if err := a.populate(db, messages, attachments); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("close scratch database: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scratch database: %w", err)
	}
	return data, nil
}

// Read decodes a structured section image back into messages and
// attachments, in write-time order.
func (a *Adapter) Read(data []byte) ([]model.Message, []model.Attachment, error) {
	path, cleanup, err := a.scratchFile()
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, nil, fmt.Errorf("write scratch database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open structured section: %w", err)
	}
	defer db.Close()

	if err := a.checkIntegrity(db); err != nil {
		return nil, nil, err
	}
	if err := a.checkSchema(db); err != nil {
		return nil, nil, err
	}

	messages, err := a.readMessages(db)
	if err != nil {
		return nil, nil, err
	}
	attachments, err := a.readAttachments(db)
	if err != nil {
		return nil, nil, err
	}

	// Fast local orphan check; the validator re-checks globally.
	ids := make(map[string]bool, len(messages))
	for _, m := range messages {
		ids[m.ID] = true
	}
	for _, att := range attachments {
		if !ids[att.MessageID] {
			return nil, nil, fmt.Errorf("%w: attachment %q references message %q",
				ErrOrphanAttachment, att.ID, att.MessageID)
		}
	}

	return messages, attachments, nil
}

func (a *Adapter) scratchFile() (string, func(), error) {
	f, err := os.CreateTemp(a.config.TempDir, "llmd-section-*.sqlite")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("close scratch file: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}

func (a *Adapter) populate(db *sql.DB, messages []model.Message, attachments []model.Attachment) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA application_id = %d;", ApplicationID),
		fmt.Sprintf("PRAGMA user_version = %d;", SchemaVersion),
		"PRAGMA journal_mode = OFF;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("set pragma: %w", err)
		}
	}

	schema := []string{
		`CREATE TABLE messages (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL UNIQUE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			parent_id TEXT,
			attachments TEXT,
			metadata TEXT
		);`,
		`CREATE TABLE attachments (
			id TEXT PRIMARY KEY,
			message_id TEXT NOT NULL REFERENCES messages(id),
			filename TEXT,
			media_type TEXT NOT NULL,
			size INTEGER,
			data BLOB,
			ref TEXT,
			checksum TEXT,
			created_at TEXT,
			metadata TEXT
		);`,
		`CREATE INDEX idx_messages_seq ON messages(seq);`,
		`CREATE INDEX idx_attachments_message_id ON attachments(message_id);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	for seq, msg := range messages {
		attJSON, err := jsonColumn(msg.Attachments)
		if err != nil {
			return fmt.Errorf("message %q attachments: %w", msg.ID, err)
		}
		metaJSON, err := jsonColumn(msg.Metadata)
		if err != nil {
			return fmt.Errorf("message %q metadata: %w", msg.ID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO messages (id, seq, role, content, timestamp, parent_id, attachments, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, seq, msg.Role, msg.Content,
			msg.Timestamp.UTC().Format(time.RFC3339Nano),
			nullString(msg.ParentID), attJSON, metaJSON,
		)
		if err != nil {
			return fmt.Errorf("insert message %q: %w", msg.ID, err)
		}
	}

	for _, att := range attachments {
		metaJSON, err := jsonColumn(att.Metadata)
		if err != nil {
			return fmt.Errorf("attachment %q metadata: %w", att.ID, err)
		}
		var createdAt any
		if !att.CreatedAt.IsZero() {
			createdAt = att.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		_, err = tx.Exec(
			`INSERT INTO attachments (id, message_id, filename, media_type, size, data, ref, checksum, created_at, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			att.ID, att.MessageID, nullString(att.Filename), att.MediaType,
			att.Size, att.Data, nullString(att.Ref), nullString(att.Checksum),
			createdAt, metaJSON,
		)
		if err != nil {
			return fmt.Errorf("insert attachment %q: %w", att.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert transaction: %w", err)
	}
	return nil
}

func (a *Adapter) checkIntegrity(db *sql.DB) error {
	var result string
	if err := db.QueryRow("PRAGMA integrity_check;").Scan(&result); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: %s", ErrCorrupt, result)
	}
	return nil
}

func (a *Adapter) checkSchema(db *sql.DB) error {
	var appID int64
	if err := db.QueryRow("PRAGMA application_id;").Scan(&appID); err != nil {
		return fmt.Errorf("read application_id: %w", err)
	}
	if appID != ApplicationID {
		return fmt.Errorf("%w: application id %#x", ErrSchemaMismatch, appID)
	}

	var schemaVersion int64
	if err := db.QueryRow("PRAGMA user_version;").Scan(&schemaVersion); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if schemaVersion != SchemaVersion {
		return fmt.Errorf("%w: schema version %d, expected %d", ErrSchemaMismatch, schemaVersion, SchemaVersion)
	}

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'messages'`).Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: messages table missing", ErrSchemaMismatch)
	}
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	return nil
}

func (a *Adapter) readMessages(db *sql.DB) ([]model.Message, error) {
	rows, err := db.Query(
		`SELECT id, role, content, timestamp, parent_id, attachments, metadata
		 FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var (
			msg      model.Message
			ts       string
			parentID sql.NullString
			attJSON  sql.NullString
			metaJSON sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &ts, &parentID, &attJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		if msg.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("message %q: bad timestamp %q: %w", msg.ID, ts, err)
		}
		msg.ParentID = parentID.String
		if attJSON.Valid {
			if err := json.Unmarshal([]byte(attJSON.String), &msg.Attachments); err != nil {
				return nil, fmt.Errorf("message %q: bad attachment list: %w", msg.ID, err)
			}
		}
		if metaJSON.Valid {
			if err := json.Unmarshal([]byte(metaJSON.String), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("message %q: bad metadata: %w", msg.ID, err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (a *Adapter) readAttachments(db *sql.DB) ([]model.Attachment, error) {
	// Files from minimal producers may omit the table entirely.
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'attachments'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("inspect schema: %w", err)
	}

	rows, err := db.Query(
		`SELECT id, message_id, filename, media_type, size, data, ref, checksum, created_at, metadata
		 FROM attachments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var (
			att       model.Attachment
			filename  sql.NullString
			size      sql.NullInt64
			ref       sql.NullString
			checksum  sql.NullString
			createdAt sql.NullString
			metaJSON  sql.NullString
		)
		if err := rows.Scan(&att.ID, &att.MessageID, &filename, &att.MediaType,
			&size, &att.Data, &ref, &checksum, &createdAt, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan attachment row: %w", err)
		}
		att.Filename = filename.String
		att.Size = size.Int64
		att.Ref = ref.String
		att.Checksum = checksum.String
		if createdAt.Valid {
			if att.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt.String); err != nil {
				return nil, fmt.Errorf("attachment %q: bad created_at %q: %w", att.ID, createdAt.String, err)
			}
		}
		if metaJSON.Valid {
			if err := json.Unmarshal([]byte(metaJSON.String), &att.Metadata); err != nil {
				return nil, fmt.Errorf("attachment %q: bad metadata: %w", att.ID, err)
			}
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return attachments, nil
}

func jsonColumn(v any) (any, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
