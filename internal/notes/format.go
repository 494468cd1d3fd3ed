package notes

import "fmt"

// Format selects the note dialect written to disk.
type Format string

const (
	FormatOrg      Format = "org"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a configured format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatOrg, FormatMarkdown:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown file format %q (expected org or markdown)", s)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".org"
}
