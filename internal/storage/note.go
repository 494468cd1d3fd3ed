package storage

import "time"

// Note is a catalog row describing one materialized bookmark file. The
// catalog is derived data over the mirror: it feeds stats and the search
// index and can always be rebuilt by a forced sync.
type Note struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	URL        string    `db:"url"`
	FilePath   string    `db:"file_path"`
	Folder     string    `db:"folder"` // "" for the default sync, "#tag" for tag scope
	Tags       string    `db:"tags"`   // JSON array of tag names
	Content    string    `db:"content"`
	CreatedAt  string    `db:"created_at"`  // ISO-8601 as reported by the API
	ModifiedAt string    `db:"modified_at"` // may be empty
	SyncedAt   time.Time `db:"synced_at"`
}
