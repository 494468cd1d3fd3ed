package notes

import (
	"fmt"
	"strings"
	"time"
)

// reservedChars are removed from titles before they become filenames.
// Everything else, including multi-byte scripts, passes through unchanged.
const reservedChars = `/\:*?"<>|`

func sanitize(title string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return -1
		}
		return r
	}, title)
}

// Filename derives the note filename for a bookmark:
// {YYYYMMDD}-{sanitizedTitle}{ext}. Two bookmarks sharing title and
// creation date collide on purpose; the later write wins the file.
func Filename(title, createdAt string, format Format) string {
	name := sanitize(title)
	if name == "" {
		name = "untitled"
	}
	return datePrefix(createdAt) + "-" + name + format.Extension()
}

func datePrefix(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return "00000000"
	}
	return t.UTC().Format("20060102")
}

// AssetFilename derives the attachment filename for one asset. It is keyed
// by (bookmarkID, assetID) so a bookmark with several image assets cannot
// overwrite its own downloads.
func AssetFilename(title, bookmarkID, assetID string) string {
	name := sanitize(title)
	if name == "" {
		name = "asset"
	}
	return fmt.Sprintf("%s-%s-%s", name, bookmarkID, assetID)
}
