package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps SQLite catalog operations
type DB struct {
	db *sql.DB
}

// Open opens or creates the catalog database
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	storage := &DB{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT,
		file_path TEXT NOT NULL,
		folder TEXT NOT NULL DEFAULT '',
		tags TEXT,
		content TEXT NOT NULL,
		created_at TEXT,
		modified_at TEXT,
		synced_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder);
	CREATE INDEX IF NOT EXISTS idx_notes_synced ON notes(synced_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Upsert inserts or updates a catalog row
func (d *DB) Upsert(n *Note) error {
	query := `
	INSERT INTO notes (
		id, title, url, file_path, folder, tags, content,
		created_at, modified_at, synced_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		url = excluded.url,
		file_path = excluded.file_path,
		folder = excluded.folder,
		tags = excluded.tags,
		content = excluded.content,
		created_at = excluded.created_at,
		modified_at = excluded.modified_at,
		synced_at = excluded.synced_at
	`

	_, err := d.db.Exec(query,
		n.ID, n.Title, n.URL, n.FilePath, n.Folder, n.Tags, n.Content,
		n.CreatedAt, n.ModifiedAt, n.SyncedAt,
	)
	return err
}

// Get retrieves a catalog row by bookmark id
func (d *DB) Get(id string) (*Note, error) {
	n := &Note{}
	query := `
	SELECT id, title, url, file_path, folder, tags, content,
	       created_at, modified_at, synced_at
	FROM notes
	WHERE id = ?
	`

	err := d.db.QueryRow(query, id).Scan(
		&n.ID, &n.Title, &n.URL, &n.FilePath, &n.Folder, &n.Tags, &n.Content,
		&n.CreatedAt, &n.ModifiedAt, &n.SyncedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return n, nil
}

// List retrieves every catalog row, most recently synced first
func (d *DB) List() ([]*Note, error) {
	query := `
	SELECT id, title, url, file_path, folder, tags, content,
	       created_at, modified_at, synced_at
	FROM notes
	ORDER BY synced_at DESC
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns []*Note
	for rows.Next() {
		n := &Note{}
		err := rows.Scan(
			&n.ID, &n.Title, &n.URL, &n.FilePath, &n.Folder, &n.Tags, &n.Content,
			&n.CreatedAt, &n.ModifiedAt, &n.SyncedAt,
		)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}

	return ns, rows.Err()
}

// Count returns the number of cataloged notes
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	return count, err
}

// LastSyncedAt returns the most recent synced_at, or the zero time when the
// catalog is empty.
func (d *DB) LastSyncedAt() (time.Time, error) {
	var ts sql.NullTime
	err := d.db.QueryRow("SELECT MAX(synced_at) FROM notes").Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time, nil
}
