package karakeep

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllBookmarksPagination(t *testing.T) {
	var requests []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "/bookmarks", r.URL.Path)
		require.Equal(t, "100", r.URL.Query().Get("limit"))
		requests = append(requests, r.URL.Query().Get("cursor"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"bookmarks": []map[string]any{
					{"id": "b1", "title": "First", "createdAt": "2024-03-20T12:00:00Z"},
					{"id": "b2", "title": "Second", "createdAt": "2024-03-21T12:00:00Z"},
				},
				"nextCursor": "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"bookmarks": []map[string]any{
				{"id": "b3", "title": "Third", "createdAt": "2024-03-22T12:00:00Z"},
			},
			"nextCursor": nil,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	bookmarks, err := client.AllBookmarks(context.Background(), PageOptions{})
	require.NoError(t, err)

	require.Len(t, bookmarks, 3)
	assert.Equal(t, []string{"", "page2"}, requests, "second request should carry the cursor")
	assert.Equal(t, "b1", bookmarks[0].ID)
	assert.Equal(t, "b3", bookmarks[2].ID)
}

func TestPageOptionsQueryParams(t *testing.T) {
	var got map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"archived":   r.URL.Query().Get("archived"),
			"favourited": r.URL.Query().Get("favourited"),
		}
		json.NewEncoder(w).Encode(map[string]any{"bookmarks": []any{}, "nextCursor": nil})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")

	_, err := client.AllBookmarks(context.Background(), PageOptions{ExcludeArchived: true, OnlyFavourited: true})
	require.NoError(t, err)
	assert.Equal(t, "false", got["archived"])
	assert.Equal(t, "true", got["favourited"])

	_, err = client.AllBookmarks(context.Background(), PageOptions{})
	require.NoError(t, err)
	assert.Empty(t, got["archived"], "archived filter should be absent by default")
	assert.Empty(t, got["favourited"], "favourited filter should be absent by default")
}

func TestAllTagBookmarksEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tags/42/bookmarks", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"bookmarks":  []map[string]any{{"id": "b9"}},
			"nextCursor": nil,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	bookmarks, err := client.AllTagBookmarks(context.Background(), "42", PageOptions{})
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "b9", bookmarks[0].ID)
}

func TestListHighlights(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bookmarks/b1/highlights", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"highlights": []map[string]any{
				{"text": "first quote", "note": "my note"},
				{"text": "second quote"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	highlights, err := client.ListHighlights(context.Background(), "b1")
	require.NoError(t, err)

	require.Len(t, highlights, 2)
	assert.Equal(t, "first quote", highlights[0].Text)
	assert.Equal(t, "my note", highlights[0].Note)
	assert.Empty(t, highlights[1].Note)
}

func TestListTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"tags": []map[string]any{{"id": "42", "name": "reading"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	tags, err := client.ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "reading", tags[0].Name)
}

func TestAPIErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	_, err := client.AllBookmarks(context.Background(), PageOptions{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "/bookmarks", apiErr.Endpoint)
	assert.False(t, apiErr.NotFound())
}

func TestContentAccessors(t *testing.T) {
	var b Bookmark
	err := json.Unmarshal([]byte(`{
		"id": "b1",
		"title": "",
		"content": {"type": "link", "url": "https://example.com", "title": "From Content", "imageUrl": "https://example.com/img.png"}
	}`), &b)
	require.NoError(t, err)

	assert.Equal(t, "link", b.Content.Type())
	assert.Equal(t, "https://example.com", b.Content.URL())
	assert.Equal(t, "https://example.com/img.png", b.Content.ImageURL())
	assert.Equal(t, "From Content", b.DisplayTitle(), "empty bookmark title falls back to content title")
}

func TestDisplayTitleFallbackChain(t *testing.T) {
	b := Bookmark{Title: "Top"}
	assert.Equal(t, "Top", b.DisplayTitle())

	var noTitles Bookmark
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "content": {"type": "text"}}`), &noTitles))
	assert.Equal(t, "Untitled", noTitles.DisplayTitle())
}

func TestModifiedTime(t *testing.T) {
	b := Bookmark{ModifiedAt: "2024-04-01T08:30:00Z"}
	mod, ok := b.ModifiedTime()
	require.True(t, ok)
	assert.Equal(t, 2024, mod.Year())

	_, ok = Bookmark{}.ModifiedTime()
	assert.False(t, ok, "missing modifiedAt")

	_, ok = Bookmark{ModifiedAt: "not-a-time"}.ModifiedTime()
	assert.False(t, ok, "unparsable modifiedAt")
}

func TestCreatedTime(t *testing.T) {
	created, ok := Bookmark{CreatedAt: "2024-03-20T12:00:00Z"}.CreatedTime()
	require.True(t, ok)
	assert.Equal(t, 2024, created.Year())

	_, ok = Bookmark{}.CreatedTime()
	assert.False(t, ok, "missing createdAt")

	_, ok = Bookmark{CreatedAt: "whenever"}.CreatedTime()
	assert.False(t, ok, "unparsable createdAt")
}
