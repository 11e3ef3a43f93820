// ABOUTME: Presentation helpers for resolver fields
// ABOUTME: Human-readable timestamps and Markdown rendering of thought text

package graph

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/yuin/goldmark"
)

// markdown renders without the unsafe option, so raw HTML in input is omitted.
var markdown = goldmark.New()

// formatDate renders t as "Mar 1st, 2024 at 12:05 pm" in UTC.
func formatDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s %d%s, %d at %s",
		t.Format("Jan"),
		t.Day(),
		ordinalSuffix(t.Day()),
		t.Year(),
		t.Format("3:04 pm"),
	)
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// renderMarkdown converts thought text to HTML. On a conversion failure the
// text is returned HTML-escaped inside a paragraph.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>\n"
	}
	return buf.String()
}
