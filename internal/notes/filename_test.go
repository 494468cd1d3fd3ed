package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameSanitization(t *testing.T) {
	got := Filename(`My/Bad:Name?`, "2024-03-20T12:00:00Z", FormatOrg)
	assert.Equal(t, "20240320-MyBadName.org", got)
}

func TestFilenameMarkdownExtension(t *testing.T) {
	got := Filename("Title", "2024-03-20T12:00:00Z", FormatMarkdown)
	assert.Equal(t, "20240320-Title.md", got)
}

func TestFilenameUnicodePassesThrough(t *testing.T) {
	got := Filename("日本語のタイトル", "2024-03-20T12:00:00Z", FormatOrg)
	assert.Equal(t, "20240320-日本語のタイトル.org", got)
}

func TestFilenameEmptyTitle(t *testing.T) {
	got := Filename(`\/:*?"<>|`, "2024-03-20T12:00:00Z", FormatOrg)
	assert.Equal(t, "20240320-untitled.org", got)
}

func TestFilenameCollision(t *testing.T) {
	// Two bookmarks sharing title and creation date resolve to the same
	// name; the second write overwrites the first. Known behavior.
	a := Filename("Foo", "2024-03-20T08:00:00Z", FormatOrg)
	b := Filename("Foo", "2024-03-20T23:59:59Z", FormatOrg)
	require.Equal(t, a, b)
	assert.Equal(t, "20240320-Foo.org", a)
}

func TestAssetFilename(t *testing.T) {
	got := AssetFilename("My/Image", "b1", "a1")
	assert.Equal(t, "MyImage-b1-a1", got)
}

func TestAssetFilenameEmptyTitle(t *testing.T) {
	got := AssetFilename("", "b1", "a2")
	assert.Equal(t, "asset-b1-a2", got)
}

func TestAssetFilenameDistinctPerAsset(t *testing.T) {
	first := AssetFilename("Shot", "b1", "a1")
	second := AssetFilename("Shot", "b1", "a2")
	assert.NotEqual(t, first, second, "multiple assets of one bookmark must not collide")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("org")
	require.NoError(t, err)
	assert.Equal(t, FormatOrg, f)

	f, err = ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
