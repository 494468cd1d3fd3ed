package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mkessel/karakeep-sync/internal/assets"
	"github.com/mkessel/karakeep-sync/internal/config"
	"github.com/mkessel/karakeep-sync/internal/karakeep"
	"github.com/mkessel/karakeep-sync/internal/search"
	"github.com/mkessel/karakeep-sync/internal/storage"
	syncer "github.com/mkessel/karakeep-sync/internal/sync"
)

func main() {
	app := &cli.App{
		Name:  "karakeep-sync",
		Usage: "Mirror Karakeep bookmarks into a local tree of org or markdown notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: ".",
				Usage: "Directory containing config.yaml / .env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Sync bookmarks from the server (incremental by default)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Ignore the watermark and re-sync everything",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Only sync bookmarks with this tag, into a #<tag> subfolder",
					},
				},
				Action: runSync,
			},
			{
				Name:      "search",
				Usage:     "Full-text search over the synced notes",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 10,
						Usage: "Maximum number of results",
					},
				},
				Action: runSearch,
			},
			{
				Name:   "stats",
				Usage:  "Show mirror statistics",
				Action: runStats,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the search index from the note catalog",
				Action: runReindex,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	return config.Load(c.String("config"))
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func runSync(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if err := os.MkdirAll(cfg.SyncDir, 0o755); err != nil {
		return fmt.Errorf("create sync dir: %w", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	idx, err := search.Open(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	client := karakeep.NewClient(cfg.ServerURL, cfg.APIKey)
	fetcher := assets.NewFetcher(cfg.AttachmentsDir, log)

	s := syncer.New(client, db, idx, fetcher, &cfg, log)
	stats, err := s.Run(c.Context, syncer.Options{
		Force: c.Bool("force"),
		Tag:   c.String("tag"),
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("=== Sync Complete ===")
	fmt.Printf("Total:          %d\n", stats.Total)
	fmt.Printf("Materialized:   %d\n", stats.Materialized)
	fmt.Printf("Skipped:        %d\n", stats.Skipped)
	if cfg.DownloadAssets {
		fmt.Printf("Assets fetched: %d\n", stats.AssetsFetched)
	}
	fmt.Printf("Errors:         %d\n", stats.Errors)
	fmt.Printf("Duration:       %v\n", stats.Duration)
	return nil
}

func runSearch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.NArg() < 1 {
		return cli.Exit("search query required", 2)
	}
	query := strings.Join(c.Args().Slice(), " ")

	idx, err := search.Open(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	results, err := idx.Search(query, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Printf("   URL: %s\n", r.URL)
		}
		fmt.Printf("   Score: %.3f\n", r.Score)
		if snippets, ok := r.Fragments["Content"]; ok && len(snippets) > 0 {
			fmt.Printf("   Preview: %s\n", snippets[0])
		}
		fmt.Println()
	}
	return nil
}

func runStats(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	idx, err := search.Open(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	noteCount, err := db.Count()
	if err != nil {
		return fmt.Errorf("count notes: %w", err)
	}
	indexCount, err := idx.Count()
	if err != nil {
		return fmt.Errorf("count index: %w", err)
	}

	fmt.Println("=== Mirror Statistics ===")
	fmt.Printf("Notes in catalog: %d\n", noteCount)
	fmt.Printf("Notes in index:   %d\n", indexCount)

	if lastNote, err := db.LastSyncedAt(); err != nil {
		return fmt.Errorf("last synced: %w", err)
	} else if !lastNote.IsZero() {
		fmt.Printf("Last note write:  %s\n", lastNote.Format("2006-01-02 15:04:05 MST"))
	}

	if watermark, ok, err := syncer.ReadWatermark(cfg.SyncDir); err != nil {
		return err
	} else if ok {
		fmt.Printf("Last sync:        %s\n", watermark.Format("2006-01-02 15:04:05 MST"))
	} else {
		fmt.Println("Last sync:        never")
	}
	return nil
}

func runReindex(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	idx, err := search.Open(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	fmt.Println("Rebuilding search index...")
	progress := func(current, total int) {
		fmt.Printf("\rIndexing: %d/%d  ", current, total)
	}
	if err := idx.Rebuild(db, progress); err != nil {
		return err
	}

	count, err := idx.Count()
	if err != nil {
		return err
	}
	fmt.Printf("\nDone: %d notes indexed\n", count)
	return nil
}
