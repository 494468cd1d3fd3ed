package karakeep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// pageLimit is the page size requested from the bookmarks endpoints.
const pageLimit = 100

// Client is a Karakeep API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Karakeep API client. baseURL is the server root,
// e.g. https://keep.example.com/api/v1.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("karakeep: %s returned %d", e.Endpoint, e.StatusCode)
}

// NotFound reports whether the error is a 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// doGet performs an authenticated GET and decodes the JSON response
func (c *Client) doGet(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode %s response: %w", endpoint, err)
		}
	}

	return nil
}

// PageOptions are the per-run filters applied to bookmark enumeration.
// Both filters are orthogonal and may be combined.
type PageOptions struct {
	ExcludeArchived bool
	OnlyFavourited  bool
}

func (o PageOptions) query(cursor string) url.Values {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", pageLimit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if o.ExcludeArchived {
		q.Set("archived", "false")
	}
	if o.OnlyFavourited {
		q.Set("favourited", "true")
	}
	return q
}

type bookmarkPage struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	NextCursor *string    `json:"nextCursor"`
}

// allPages walks a cursor-paginated bookmarks endpoint to exhaustion. A
// failed page fetch aborts the whole enumeration.
func (c *Client) allPages(ctx context.Context, endpoint string, opts PageOptions) ([]Bookmark, error) {
	var all []Bookmark
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var page bookmarkPage
		if err := c.doGet(ctx, endpoint, opts.query(cursor), &page); err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		all = append(all, page.Bookmarks...)

		if page.NextCursor == nil || *page.NextCursor == "" {
			return all, nil
		}
		cursor = *page.NextCursor
	}
}

// AllBookmarks fetches the whole collection, page by page.
func (c *Client) AllBookmarks(ctx context.Context, opts PageOptions) ([]Bookmark, error) {
	return c.allPages(ctx, "/bookmarks", opts)
}

// AllTagBookmarks fetches every bookmark carrying the given tag.
func (c *Client) AllTagBookmarks(ctx context.Context, tagID string, opts PageOptions) ([]Bookmark, error) {
	return c.allPages(ctx, "/tags/"+url.PathEscape(tagID)+"/bookmarks", opts)
}

// ListHighlights fetches the highlights sub-resource for one bookmark.
func (c *Client) ListHighlights(ctx context.Context, bookmarkID string) ([]Highlight, error) {
	var result struct {
		Highlights []Highlight `json:"highlights"`
	}
	endpoint := "/bookmarks/" + url.PathEscape(bookmarkID) + "/highlights"
	if err := c.doGet(ctx, endpoint, nil, &result); err != nil {
		return nil, fmt.Errorf("list highlights for %s: %w", bookmarkID, err)
	}
	return result.Highlights, nil
}

// ListTags fetches all tags.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var result struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.doGet(ctx, "/tags", nil, &result); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return result.Tags, nil
}
