// Package templates embeds the HTML pages of the board.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var FS embed.FS

// Parse builds the page set with the given function map. Pages are addressed by file
// name, e.g. "index.html".
func Parse(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(FS, "*.html")
}
