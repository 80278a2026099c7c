package pipeline

import (
	"strings"
	"unicode/utf8"
)

const minColWidth = 3 // minimum separator width for a valid Markdown table (---)

// MarkdownTable converts rows into a GitHub-Flavored Markdown table. The
// first row is the header. Short rows are padded with empty cells.
func MarkdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	maxCols := 0
	for _, row := range rows {
		maxCols = max(maxCols, len(row))
	}
	if maxCols == 0 {
		return ""
	}

	escaped := make([][]string, len(rows))
	widths := make([]int, maxCols)
	for i := range widths {
		widths[i] = minColWidth
	}
	for r, row := range rows {
		escaped[r] = make([]string, maxCols)
		for c := range maxCols {
			if c < len(row) {
				escaped[r][c] = EscapeCell(row[c])
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(escaped[r][c]))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for c, cell := range cells {
			sb.WriteString(" " + cell + strings.Repeat(" ", widths[c]-utf8.RuneCountInString(cell)) + " |")
		}
		sb.WriteByte('\n')
	}

	writeRow(escaped[0])
	sb.WriteString("|")
	for c := range maxCols {
		sb.WriteString(" " + strings.Repeat("-", widths[c]) + " |")
	}
	sb.WriteByte('\n')
	for _, row := range escaped[1:] {
		writeRow(row)
	}

	return sb.String()
}

// EscapeCell makes s safe as literal table cell text: ASCII punctuation is
// backslash-escaped so cell values never turn into links, emphasis or HTML,
// and line breaks collapse to spaces.
func EscapeCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\t", " ").Replace(s)
	s = strings.TrimSpace(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf && strings.ContainsRune(markdownPunct, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// markdownPunct is the ASCII punctuation CommonMark allows to be escaped.
const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
