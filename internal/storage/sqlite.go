package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	snapshotFile = "index.db"
	tempSuffix   = ".tmp"
)

// SQLiteSnapshot stores an index snapshot as a SQLite database file inside dir.
// Each Save writes a fresh file next to the live one and renames it into place,
// so a crash mid-write leaves the previous snapshot intact.
type SQLiteSnapshot struct {
	dir string
}

// NewSQLiteSnapshot returns a store rooted at dir. Nothing is created until Save.
func NewSQLiteSnapshot(dir string) *SQLiteSnapshot {
	return &SQLiteSnapshot{dir: dir}
}

// Path returns the snapshot directory.
func (s *SQLiteSnapshot) Path() string {
	return s.dir
}

func (s *SQLiteSnapshot) file() string {
	return filepath.Join(s.dir, snapshotFile)
}

const schema = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE chunks (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	source TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	vector BLOB NOT NULL
);
`

// Save writes snap to a temporary database and renames it over the live one.
func (s *SQLiteSnapshot) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	tmp := s.file() + tempSuffix
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale temp file: %w", err)
	}

	if err := writeSnapshot(ctx, tmp, snap); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.file()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(ctx context.Context, path string, snap *Snapshot) (err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	meta := map[string]string{
		"dimensions": strconv.Itoa(snap.Dimensions),
		"model":      snap.Model,
		"saved_at":   savedAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to write meta: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (position, id, source, chunk_index, content, vector) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range snap.Entries {
		if len(e.Vector) != snap.Dimensions {
			return fmt.Errorf("entry %d: vector dimension %d, expected %d", i, len(e.Vector), snap.Dimensions)
		}
		if _, err := stmt.ExecContext(ctx, i, e.Chunk.ID, e.Chunk.Source, e.Chunk.Index, e.Chunk.Text,
			float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load reads the live snapshot. A missing file yields nil, nil.
func (s *SQLiteSnapshot) Load(ctx context.Context) (*Snapshot, error) {
	if _, err := os.Stat(s.file()); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+s.file()+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer db.Close()

	meta := make(map[string]string)
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, err
		}
		meta[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dims, err := strconv.Atoi(meta["dimensions"])
	if err != nil || dims <= 0 {
		return nil, fmt.Errorf("invalid snapshot dimensions %q", meta["dimensions"])
	}
	snap := &Snapshot{Dimensions: dims, Model: meta["model"]}
	if t, err := time.Parse(time.RFC3339Nano, meta["saved_at"]); err == nil {
		snap.SavedAt = t
	}

	rows, err = db.QueryContext(ctx,
		`SELECT id, source, chunk_index, content, vector FROM chunks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		var blob []byte
		if err := rows.Scan(&e.Chunk.ID, &e.Chunk.Source, &e.Chunk.Index, &e.Chunk.Text, &blob); err != nil {
			return nil, err
		}
		vec, err := bytesToFloat32Slice(blob)
		if err != nil {
			return nil, err
		}
		if len(vec) != dims {
			return nil, fmt.Errorf("chunk %s: vector dimension %d, expected %d", e.Chunk.ID, len(vec), dims)
		}
		e.Vector = vec
		snap.Entries = append(snap.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Remove deletes the snapshot directory and everything in it.
func (s *SQLiteSnapshot) Remove() error {
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove index directory: %w", err)
	}
	return nil
}

// DiskUsage returns the bytes used by the snapshot directory.
func (s *SQLiteSnapshot) DiskUsage() (int64, error) {
	return DiskUsageBytes(s.dir)
}
