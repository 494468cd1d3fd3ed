package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/mkessel/karakeep-sync/internal/assets"
	"github.com/mkessel/karakeep-sync/internal/config"
	"github.com/mkessel/karakeep-sync/internal/karakeep"
	"github.com/mkessel/karakeep-sync/internal/notes"
	"github.com/mkessel/karakeep-sync/internal/search"
	"github.com/mkessel/karakeep-sync/internal/storage"
)

// ErrTagNotFound is returned when a tag-scoped sync names a tag the server
// does not know.
var ErrTagNotFound = errors.New("tag not found")

// Syncer mirrors the remote bookmark collection into the local note tree.
type Syncer struct {
	client  *karakeep.Client
	db      *storage.DB
	index   *search.Index
	fetcher *assets.Fetcher
	cfg     *config.Config
	log     *logrus.Logger
}

// New creates a sync engine over the given collaborators.
func New(client *karakeep.Client, db *storage.DB, index *search.Index, fetcher *assets.Fetcher, cfg *config.Config, log *logrus.Logger) *Syncer {
	return &Syncer{
		client:  client,
		db:      db,
		index:   index,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log,
	}
}

// Options selects the scope of one run.
type Options struct {
	// Force ignores the watermark and re-syncs everything.
	Force bool
	// Tag restricts the run to bookmarks carrying this tag name, written
	// into a #<tag> subfolder.
	Tag string
}

// Stats holds sync statistics
type Stats struct {
	Total         int
	Materialized  int
	Skipped       int
	AssetsFetched int
	Errors        int
	Duration      time.Duration
}

// Run performs one sync. A failed page fetch is fatal and leaves the
// watermark untouched; a failed record is logged, counted and skipped so
// its siblings still materialize. The watermark advances only after a
// clean full-scope run: a tag run enumerates a subset, and a run with
// failed records has bookmarks that never reached disk, so both keep the
// previous baseline in place.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{}

	folder := s.cfg.SyncDir
	subfolder := ""
	tagID := ""
	if opts.Tag != "" {
		id, err := s.resolveTag(ctx, opts.Tag)
		if err != nil {
			return nil, err
		}
		tagID = id
		subfolder = "#" + opts.Tag
		folder = filepath.Join(s.cfg.SyncDir, subfolder)
	}

	var since time.Time
	haveSince := false
	if !opts.Force {
		var err error
		since, haveSince, err = ReadWatermark(s.cfg.SyncDir)
		if err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"force":       opts.Force,
		"tag":         opts.Tag,
		"incremental": haveSince,
	}).Info("starting sync")

	pageOpts := karakeep.PageOptions{
		ExcludeArchived: s.cfg.ExcludeArchived,
		OnlyFavourited:  s.cfg.OnlyFavorites,
	}

	var bookmarks []karakeep.Bookmark
	var err error
	if tagID != "" {
		bookmarks, err = s.client.AllTagBookmarks(ctx, tagID, pageOpts)
	} else {
		bookmarks, err = s.client.AllBookmarks(ctx, pageOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("enumerate bookmarks: %w", err)
	}

	if haveSince {
		bookmarks = filterSince(bookmarks, since)
	}
	stats.Total = len(bookmarks)
	s.log.WithField("count", stats.Total).Info("bookmarks to materialize")

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create sync folder: %w", err)
	}

	bar := progressbar.Default(int64(len(bookmarks)), "Syncing")
	for _, b := range bookmarks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.materialize(ctx, b, folder, subfolder, stats); err != nil {
			s.log.WithFields(logrus.Fields{
				"id":    b.ID,
				"title": b.DisplayTitle(),
			}).WithError(err).Error("materialize bookmark")
			stats.Errors++
		}
		bar.Add(1)
	}
	bar.Finish()

	switch {
	case opts.Tag != "":
		s.log.Debug("tag-scoped run, watermark left untouched")
	case stats.Errors > 0:
		s.log.WithField("errors", stats.Errors).Warn("sync finished with errors, keeping previous watermark")
	default:
		if err := WriteWatermark(s.cfg.SyncDir, time.Now()); err != nil {
			return nil, err
		}
	}

	stats.Duration = time.Since(startTime)
	s.log.WithFields(logrus.Fields{
		"materialized": stats.Materialized,
		"skipped":      stats.Skipped,
		"errors":       stats.Errors,
		"duration":     stats.Duration,
	}).Info("sync complete")

	return stats, nil
}

// resolveTag maps a tag name to its id via the tags endpoint.
func (s *Syncer) resolveTag(ctx context.Context, name string) (string, error) {
	tags, err := s.client.ListTags(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range tags {
		if t.Name == name {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTagNotFound, name)
}

// filterSince keeps bookmarks modified at or after the watermark. Records
// with a missing or unparsable modifiedAt are kept: an unverifiable record
// must never be dropped silently.
func filterSince(bookmarks []karakeep.Bookmark, since time.Time) []karakeep.Bookmark {
	kept := bookmarks[:0]
	for _, b := range bookmarks {
		mod, ok := b.ModifiedTime()
		if !ok || !mod.Before(since) {
			kept = append(kept, b)
		}
	}
	return kept
}

// materialize writes one bookmark to disk: filename, fast-path skip,
// highlights merge, optional asset downloads, render, write, catalog.
func (s *Syncer) materialize(ctx context.Context, b karakeep.Bookmark, folder, subfolder string, stats *Stats) error {
	if _, ok := b.CreatedTime(); !ok {
		s.log.WithFields(logrus.Fields{
			"id":        b.ID,
			"createdAt": b.CreatedAt,
		}).Debug("unparsable createdAt, filename gets the zero date prefix")
	}
	name := notes.Filename(b.DisplayTitle(), b.CreatedAt, s.cfg.Format)
	path := filepath.Join(folder, name)

	if !s.cfg.UpdateExisting {
		if _, err := os.Stat(path); err == nil {
			stats.Skipped++
			return nil
		}
	}

	highlights, err := s.client.ListHighlights(ctx, b.ID)
	if err != nil {
		return err
	}
	b.Highlights = highlights

	if s.cfg.DownloadAssets {
		s.fetchAssets(ctx, b, stats)
	}

	body := notes.Render(b, s.cfg.Format)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}

	if err := s.catalog(b, path, subfolder, body); err != nil {
		return err
	}

	stats.Materialized++
	return nil
}

// fetchAssets downloads the image assets of one bookmark. Asset failures
// never fail the record; the note is still worth writing.
func (s *Syncer) fetchAssets(ctx context.Context, b karakeep.Bookmark, stats *Stats) {
	for _, a := range b.Assets {
		if a.AssetType != "image" {
			continue
		}
		name := notes.AssetFilename(b.DisplayTitle(), b.ID, a.ID)
		_, skipped, err := s.fetcher.Fetch(ctx, b.Content.ImageURL(), name)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"id":    b.ID,
				"asset": a.ID,
			}).WithError(err).Warn("fetch asset")
			continue
		}
		if !skipped {
			stats.AssetsFetched++
		}
	}
}

// catalog records the materialized note for the stats and search commands.
func (s *Syncer) catalog(b karakeep.Bookmark, path, subfolder, body string) error {
	tagsJSON, err := json.Marshal(b.TagNames())
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	note := &storage.Note{
		ID:         b.ID,
		Title:      b.DisplayTitle(),
		URL:        b.Content.URL(),
		FilePath:   path,
		Folder:     subfolder,
		Tags:       string(tagsJSON),
		Content:    body,
		CreatedAt:  b.CreatedAt,
		ModifiedAt: b.ModifiedAt,
		SyncedAt:   time.Now(),
	}
	if err := s.db.Upsert(note); err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}

	indexed := &search.IndexedNote{
		ID:      b.ID,
		Title:   note.Title,
		Content: body,
		URL:     note.URL,
		Folder:  subfolder,
		Tags:    b.TagNames(),
	}
	if err := s.index.IndexNote(indexed); err != nil {
		return fmt.Errorf("index note: %w", err)
	}

	return nil
}
