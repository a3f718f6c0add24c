package utils

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown renders CommonMark with single newlines as <br>. Raw HTML is passed through
// on purpose: everything the renderer emits goes through sanitizer afterwards.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

var sanitizer = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "strong", "em", "code", "pre", "blockquote",
		"ul", "ol", "li", "a", "h1", "h2", "h3", "h4", "h5", "h6",
	)
	p.AllowAttrs("href", "title", "rel").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
}

// Sanitize filters an HTML fragment through the content allow-list. Disallowed tags are
// dropped with their text kept, except script/style bodies which are removed.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// RenderMarkdown converts user Markdown into an HTML fragment safe to embed as-is.
// The stored source is never modified, so a stricter policy applies retroactively.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		// Convert only fails on writer errors; keep whatever was produced
		Sugar.Warnf("markdown render failed: %v", err)
	}
	return strings.TrimSpace(Sanitize(buf.String()))
}

var plainBreaks = strings.NewReplacer(
	"\r\n", "<br>",
	"\r", "<br>",
	"\n", "<br>",
	"&lt;br&gt;", "<br>",
	"&lt;br/&gt;", "<br>",
	"&lt;br /&gt;", "<br>",
)

// RenderPlain turns already HTML-escaped text into a fragment with line breaks.
// It does no escaping itself. Typed "<br>" variants (escaped by the caller) become real
// breaks, as does every newline variant.
func RenderPlain(escaped string) string {
	return plainBreaks.Replace(escaped)
}
