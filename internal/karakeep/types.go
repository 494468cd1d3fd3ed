package karakeep

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Tag represents a Karakeep tag
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Asset is a binary side-resource attached to a bookmark
type Asset struct {
	ID        string `json:"id"`
	AssetType string `json:"assetType"`
}

// Highlight belongs to exactly one bookmark; both fields are optional
type Highlight struct {
	Text string `json:"text"`
	Note string `json:"note"`
}

// Content is the variant payload of a bookmark. Its shape depends on the
// bookmark type (link, text, asset, ...), so the raw JSON is kept and the
// known fields are read through accessors.
type Content struct {
	raw json.RawMessage
}

func (c *Content) UnmarshalJSON(data []byte) error {
	c.raw = append(c.raw[:0], data...)
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

func (c Content) Type() string {
	return gjson.GetBytes(c.raw, "type").String()
}

func (c Content) URL() string {
	return gjson.GetBytes(c.raw, "url").String()
}

func (c Content) Title() string {
	return gjson.GetBytes(c.raw, "title").String()
}

func (c Content) ImageURL() string {
	return gjson.GetBytes(c.raw, "imageUrl").String()
}

// Bookmark represents a Karakeep bookmark. Timestamps are kept as the raw
// ISO-8601 strings from the API; an unparsable modifiedAt must not drop the
// record from an incremental sync, so parsing is deferred to the accessors.
type Bookmark struct {
	ID         string  `json:"id"`
	CreatedAt  string  `json:"createdAt"`
	ModifiedAt string  `json:"modifiedAt"`
	Title      string  `json:"title"`
	Archived   bool    `json:"archived"`
	Favourited bool    `json:"favourited"`
	Tags       []Tag   `json:"tags"`
	Content    Content `json:"content"`
	Assets     []Asset `json:"assets"`
	Note       string  `json:"note"`

	// Highlights is populated from the separate highlights endpoint before
	// rendering; the listing payload does not inline it.
	Highlights []Highlight `json:"-"`
}

// DisplayTitle resolves the title fallback chain: bookmark title, then the
// nested content title, then a literal placeholder.
func (b Bookmark) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	if t := b.Content.Title(); t != "" {
		return t
	}
	return "Untitled"
}

// ModifiedTime parses modifiedAt. ok is false when the field is missing or
// unparsable.
func (b Bookmark) ModifiedTime() (time.Time, bool) {
	return parseAPITime(b.ModifiedAt)
}

// CreatedTime parses createdAt. ok is false when the field is missing or
// unparsable.
func (b Bookmark) CreatedTime() (time.Time, bool) {
	return parseAPITime(b.CreatedAt)
}

func parseAPITime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TagNames returns the tag names in response order.
func (b Bookmark) TagNames() []string {
	if len(b.Tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(b.Tags))
	for _, t := range b.Tags {
		names = append(names, t.Name)
	}
	return names
}
