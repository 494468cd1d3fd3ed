package notes

import (
	"fmt"
	"strings"

	"github.com/mkessel/karakeep-sync/internal/karakeep"
)

// Render turns a bookmark (with its highlights merged in) into the note
// body for the given format. The output is deterministic: the same record
// always renders to the same bytes.
func Render(b karakeep.Bookmark, format Format) string {
	if format == FormatMarkdown {
		return renderMarkdown(b)
	}
	return renderOrg(b)
}

func renderOrg(b karakeep.Bookmark) string {
	var sb strings.Builder
	title := b.DisplayTitle()
	url := b.Content.URL()

	fmt.Fprintf(&sb, "* %s\n", title)
	sb.WriteString(":PROPERTIES:\n")
	if url != "" {
		fmt.Fprintf(&sb, ":URL: %s\n", url)
	}
	fmt.Fprintf(&sb, ":TYPE: %s\n", b.Content.Type())
	fmt.Fprintf(&sb, ":CREATED: %s\n", b.CreatedAt)
	if b.ModifiedAt != "" {
		fmt.Fprintf(&sb, ":MODIFIED: %s\n", b.ModifiedAt)
	}
	if tags := b.TagNames(); len(tags) > 0 {
		fmt.Fprintf(&sb, ":TAGS: %s\n", strings.Join(tags, " "))
	}
	sb.WriteString(":END:\n")

	if url != "" {
		fmt.Fprintf(&sb, "\n[[%s][%s]]\n", url, title)
	}

	if len(b.Highlights) > 0 {
		sb.WriteString("\n** Highlights\n")
		for _, h := range b.Highlights {
			sb.WriteString("\n")
			if h.Text != "" {
				fmt.Fprintf(&sb, "#+begin_quote\n%s\n#+end_quote\n", h.Text)
			}
			if h.Note != "" {
				fmt.Fprintf(&sb, "%s\n", h.Note)
			}
		}
	}

	if b.Note != "" {
		fmt.Fprintf(&sb, "\n** Notes\n\n%s\n", b.Note)
	}

	return sb.String()
}

func renderMarkdown(b karakeep.Bookmark) string {
	var sb strings.Builder
	title := b.DisplayTitle()
	url := b.Content.URL()

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %s\n", title)
	if url != "" {
		fmt.Fprintf(&sb, "url: %s\n", url)
	}
	fmt.Fprintf(&sb, "type: %s\n", b.Content.Type())
	fmt.Fprintf(&sb, "created: %s\n", b.CreatedAt)
	if b.ModifiedAt != "" {
		fmt.Fprintf(&sb, "modified: %s\n", b.ModifiedAt)
	}
	if tags := b.TagNames(); len(tags) > 0 {
		sb.WriteString("tags:\n")
		for _, name := range tags {
			fmt.Fprintf(&sb, "  - \"#%s\"\n", name)
		}
	}
	sb.WriteString("---\n")

	if url != "" {
		fmt.Fprintf(&sb, "\n[%s](%s)\n", title, url)
	}

	if len(b.Highlights) > 0 {
		sb.WriteString("\n## Highlights\n")
		for _, h := range b.Highlights {
			sb.WriteString("\n")
			if h.Text != "" {
				sb.WriteString(blockquote(h.Text))
			}
			if h.Note != "" {
				fmt.Fprintf(&sb, "%s\n", h.Note)
			}
		}
	}

	if b.Note != "" {
		fmt.Fprintf(&sb, "\n## Notes\n\n%s\n", b.Note)
	}

	return sb.String()
}

// blockquote prefixes every line of text with "> " so multi-line highlights
// stay inside one quote block.
func blockquote(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&sb, "> %s\n", line)
	}
	return sb.String()
}
