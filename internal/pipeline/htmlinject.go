package pipeline

import (
	"context"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized to prevent injection attacks.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// cjkFamilies cover the Japanese glyphs attendance sheets are written in,
// across Linux, macOS and Windows installs.
var cjkFamilies = []string{
	"Noto Sans CJK JP",
	"Hiragino Sans",
	"Yu Gothic",
	"Meiryo",
}

// FontCSS returns the document-wide font rule. family, when set, is tried
// first. Glyphs missing from every family render as the browser's
// replacement box.
func FontCSS(family string) string {
	families := make([]string, 0, len(cjkFamilies)+1)
	if f := strings.TrimSpace(strings.NewReplacer(`"`, "", `\`, "", "\n", " ").Replace(family)); f != "" {
		families = append(families, f)
	}
	families = append(families, cjkFamilies...)

	quoted := make([]string, len(families))
	for i, f := range families {
		quoted[i] = `"` + f + `"`
	}
	return "body { font-family: " + strings.Join(quoted, ", ") + ", sans-serif; }\n"
}
