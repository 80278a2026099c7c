package pipeline

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// NoDataText stands in for the table of a sheet without values.
const NoDataText = "No data"

// documentTemplate wraps the per-sheet sections in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<h1 class="document-title">%s</h1>
%s</body>
</html>`

// DocumentBuilder lays out sheets as a printable HTML document: one section
// per sheet, each ending with a page break.
type DocumentBuilder struct {
	md  HTMLConverter
	css CSSInjector
}

// NewDocumentBuilder returns a builder backed by goldmark.
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{md: NewGoldmarkConverter(), css: &CSSInjection{}}
}

// Build renders title and sheets into a standalone HTML document with css
// injected into its head.
func (b *DocumentBuilder) Build(ctx context.Context, title string, sheets []Sheet, css string) (string, error) {
	var body strings.Builder
	for _, s := range sheets {
		section, err := b.md.ToHTML(ctx, SheetMarkdown(s))
		if err != nil {
			return "", fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		body.WriteString(`<section class="sheet">` + "\n")
		body.WriteString(section)
		body.WriteString("</section>\n")
	}

	escaped := html.EscapeString(title)
	doc := fmt.Sprintf(documentTemplate, escaped, escaped, body.String())
	return b.css.InjectCSS(ctx, doc, css), nil
}

// SheetMarkdown renders one sheet as a heading followed by its table, or
// by a note when the sheet has no values.
func SheetMarkdown(s Sheet) string {
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(EscapeCell(s.Name))
	sb.WriteString("\n\n")
	if len(s.Rows) == 0 {
		sb.WriteString("*" + NoDataText + "*\n")
		return sb.String()
	}
	sb.WriteString(MarkdownTable(s.Rows))
	return sb.String()
}
