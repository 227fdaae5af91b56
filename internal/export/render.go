// Package export renders stories to bytes and writes them to the export
// directory. Recording the export is the caller's concern.
package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/tinytales/tinytales-server/internal/model"
)

// Render produces the file content for a story in the given format.
func Render(s *model.Story, format model.ExportFormat) ([]byte, error) {
	switch format {
	case model.FormatText:
		return renderText(s), nil
	case model.FormatMarkdown:
		return renderMarkdown(s), nil
	case model.FormatHTML:
		return renderHTML(s), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func renderText(s *model.Story) []byte {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(s.Title)
	b.WriteString("\n\nPrompt: ")
	b.WriteString(s.Prompt)
	b.WriteString("\n\n")
	b.WriteString(s.Body)
	b.WriteString("\n")
	return []byte(b.String())
}

func renderMarkdown(s *model.Story) []byte {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(s.Title)
	b.WriteString("\n\n> ")
	b.WriteString(s.Prompt)
	b.WriteString("\n\n")
	b.WriteString(s.Body)
	b.WriteString("\n")
	return []byte(b.String())
}

func renderHTML(s *model.Story) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>")
	b.WriteString(html.EscapeString(s.Title))
	b.WriteString("</title></head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(s.Title))
	b.WriteString("</h1>\n")
	for _, para := range strings.Split(s.Body, "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(para))
		b.WriteString("</p>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// Filename builds the export file name for a story at a point in time.
func Filename(storyID int64, format model.ExportFormat, at time.Time) string {
	return fmt.Sprintf("story_%d_%s.%s", storyID, at.Format("20060102_150405"), format)
}
