package search

import (
	"encoding/json"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	_ "github.com/blevesearch/bleve/v2/search/highlight/highlighter/ansi"

	"github.com/mkessel/karakeep-sync/internal/storage"
)

// Index wraps a Bleve search index over the synced notes
type Index struct {
	index bleve.Index
}

// IndexedNote represents a note in the search index
type IndexedNote struct {
	ID      string
	Title   string
	Content string
	URL     string
	Folder  string
	Tags    []string
}

// Result represents a search hit
type Result struct {
	ID        string
	Title     string
	URL       string
	Score     float64
	Fragments map[string][]string // Highlighted snippets
}

// Open opens or creates a Bleve index
func Open(path string) (*Index, error) {
	var idx bleve.Index
	var err error

	idx, err = bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

// buildIndexMapping creates the index mapping with an English-analyzed title
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Content", textFieldMapping)
	docMapping.AddFieldMappingsAt("URL", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Folder", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Tags", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexNote adds or updates a note in the index
func (i *Index) IndexNote(n *IndexedNote) error {
	return i.index.Index(n.ID, n)
}

// Delete removes a note from the index
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Search performs a query-string search (supports quotes, boolean
// operators, fuzzy ~)
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	query := bleve.NewQueryStringQuery(queryStr)

	search := bleve.NewSearchRequestOptions(query, limit, 0, false)
	search.Highlight = bleve.NewHighlightWithStyle("ansi")
	search.Fields = []string{"Title", "URL"}

	results, err := i.index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var out []*Result
	for _, hit := range results.Hits {
		r := &Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if url, ok := hit.Fields["URL"].(string); ok {
			r.URL = url
		}
		out = append(out, r)
	}

	return out, nil
}

// Rebuild reindexes every cataloged note in one batch
func (i *Index) Rebuild(db *storage.DB, progress func(current, total int)) error {
	ns, err := db.List()
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}

	batch := i.index.NewBatch()
	for k, n := range ns {
		if err := batch.Index(n.ID, noteToIndexed(n)); err != nil {
			return fmt.Errorf("batch index %s: %w", n.ID, err)
		}
		if progress != nil {
			progress(k+1, len(ns))
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}

func noteToIndexed(n *storage.Note) *IndexedNote {
	var tags []string
	if n.Tags != "" {
		// Tags are stored as a JSON array of names; a malformed value only
		// loses the tag facet, not the note.
		_ = json.Unmarshal([]byte(n.Tags), &tags)
	}
	return &IndexedNote{
		ID:      n.ID,
		Title:   n.Title,
		Content: n.Content,
		URL:     n.URL,
		Folder:  n.Folder,
		Tags:    tags,
	}
}

// Count returns the number of notes in the index
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
