// Package history keeps a local SQLite log of completed looks.
package history

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/style"
	"golang.org/x/crypto/blake2b"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("history store is closed")

const schema = `
CREATE TABLE IF NOT EXISTS looks (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	occasion TEXT NOT NULL,
	genre TEXT NOT NULL,
	gender TEXT NOT NULL,
	weather TEXT NOT NULL,
	skin_tone TEXT NOT NULL,
	dress_colors TEXT NOT NULL,
	regeneration INTEGER NOT NULL,
	photo_hash TEXT NOT NULL,
	result_json TEXT NOT NULL,
	image_mime TEXT NOT NULL,
	image_size INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS looks_created_at ON looks (created_at);
`

// Entry is one recorded look.
type Entry struct {
	ID           string
	SessionID    string
	CreatedAt    time.Time
	Occasion     string
	Genre        string
	Gender       string
	Weather      string
	SkinTone     string
	DressColors  string
	Regeneration int
	PhotoHash    string
	Result       *style.AnalysisResult
	ImageMIME    string
	ImageSize    int
}

// Store is a SQLite backed history of looks.
// A single connection is shared behind a mutex.
type Store struct {
	conn *sqlite.Conn
	mu   sync.Mutex
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite|sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Record inserts an entry. Missing ids and timestamps are filled in.
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	resultJSON, err := sonic.MarshalString(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrClosed
	}
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	err = sqlitex.Execute(s.conn, `
		INSERT INTO looks (
			id, session_id, created_at, occasion, genre, gender, weather,
			skin_tone, dress_colors, regeneration, photo_hash, result_json,
			image_mime, image_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{
			entry.ID, entry.SessionID, entry.CreatedAt.UnixMilli(), entry.Occasion, entry.Genre,
			entry.Gender, entry.Weather, entry.SkinTone, entry.DressColors, entry.Regeneration,
			entry.PhotoHash, resultJSON, entry.ImageMIME, entry.ImageSize,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to insert look: %w", err)
	}

	return nil
}

// RecordLook stores a completed session attempt.
func (s *Store) RecordLook(ctx context.Context, look *session.Look) error {
	entry := &Entry{
		SessionID:    look.SessionID,
		CreatedAt:    look.CreatedAt,
		Occasion:     look.Request.Occasion,
		Genre:        look.Request.Genre,
		Gender:       look.Request.Gender.Label(),
		Weather:      look.Request.Weather,
		SkinTone:     look.Request.SkinTone,
		DressColors:  look.Request.DressColors,
		Regeneration: look.Regeneration,
		Result:       look.Result,
	}

	// Fingerprint the original upload so the hash does not depend on compaction
	if look.Photo != nil {
		entry.PhotoHash = PhotoHash(look.Photo.Data)
	} else {
		entry.PhotoHash = PhotoHash(look.Request.PhotoData)
	}
	if look.Image != nil {
		entry.ImageMIME = look.Image.MIMEType
		entry.ImageSize = len(look.Image.Data)
	}

	return s.Record(ctx, entry)
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, ErrClosed
	}
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	var entries []*Entry
	err := sqlitex.Execute(s.conn, `
		SELECT id, session_id, created_at, occasion, genre, gender, weather,
			skin_tone, dress_colors, regeneration, photo_hash, result_json,
			image_mime, image_size
		FROM looks
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, &sqlitex.ExecOptions{
		Args: []any{limit},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			entry := &Entry{
				ID:           stmt.ColumnText(0),
				SessionID:    stmt.ColumnText(1),
				CreatedAt:    time.UnixMilli(stmt.ColumnInt64(2)),
				Occasion:     stmt.ColumnText(3),
				Genre:        stmt.ColumnText(4),
				Gender:       stmt.ColumnText(5),
				Weather:      stmt.ColumnText(6),
				SkinTone:     stmt.ColumnText(7),
				DressColors:  stmt.ColumnText(8),
				Regeneration: stmt.ColumnInt(9),
				PhotoHash:    stmt.ColumnText(10),
				ImageMIME:    stmt.ColumnText(12),
				ImageSize:    stmt.ColumnInt(13),
			}

			var result style.AnalysisResult
			if err := sonic.UnmarshalString(stmt.ColumnText(11), &result); err != nil {
				return fmt.Errorf("failed to unmarshal result of look %s: %w", entry.ID, err)
			}
			entry.Result = &result

			entries = append(entries, entry)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query looks: %w", err)
	}

	return entries, nil
}

// Close closes the underlying connection. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	return err
}

// PhotoHash fingerprints photo bytes with BLAKE2b-256.
func PhotoHash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
