package utils

import (
	"html/template"
	"time"
)

// DatetimeLayout renders unix timestamps in page templates.
const DatetimeLayout = "2006-01-02 15:04 UTC"

// TemplateFuncs exposes the content renderers to html/template. nl2br expects input
// already passed through escape.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(src string) template.HTML {
			return template.HTML(RenderMarkdown(src))
		},
		"escape": EscapeHTML,
		"nl2br": func(escaped string) template.HTML {
			return template.HTML(RenderPlain(escaped))
		},
		"datetime": FormatTimestamp,
	}
}

// FormatTimestamp formats unix seconds as UTC; zero renders as an empty string.
func FormatTimestamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(DatetimeLayout)
}

// EscapeHTML escapes text for use as HTML element content.
func EscapeHTML(s string) string {
	return template.HTMLEscapeString(s)
}
