// Package text holds the timestamp format, HTML escaping, and
// message-chunking helpers shared by the flows and the transport.
package text

import (
	"fmt"
	"html"
	"time"
)

// StoreLayout is how date-times are persisted. Lexical order of these
// strings equals chronological order, which the visibility filter
// relies on.
const StoreLayout = "2006-01-02 15:04"

// displayLayout is how date-times are shown to users (no year).
const displayLayout = "15:04 02.01"

// MessageLimit is the outbound chunk ceiling, kept under the
// platform's 4096-character message limit.
const MessageLimit = 4000

// Timestamp renders t in the canonical stored format.
func Timestamp(t time.Time) string {
	return t.Format(StoreLayout)
}

// ParseTimestamp validates and canonicalizes a user-entered
// "YYYY-MM-DD HH:MM" string.
func ParseTimestamp(s string) (string, error) {
	t, err := time.Parse(StoreLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date-time %q: %w", s, err)
	}
	return t.Format(StoreLayout), nil
}

// Display converts a stored timestamp to the short display form.
// Unexpected input is returned as-is.
func Display(stored string) string {
	t, err := time.Parse(StoreLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format(displayLayout)
}

// Escape escapes a string for HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

// ChunkLines joins lines into messages of at most max characters,
// splitting only at line boundaries. A single line longer than max
// becomes its own chunk rather than being cut mid-line.
func ChunkLines(lines []string, max int) []string {
	var chunks []string
	buf := ""
	for _, line := range lines {
		part := line
		if buf != "" {
			part = "\n" + line
		}
		if buf != "" && len(buf)+len(part) > max {
			chunks = append(chunks, buf)
			buf = line
		} else {
			buf += part
		}
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}
