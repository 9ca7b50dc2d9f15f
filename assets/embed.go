// Package assets holds the embedded HTML view of the game.
package assets

import (
	"embed"
	"html/template"
	"io"
)

//go:embed index.html
var FS embed.FS

var page = template.Must(template.ParseFS(FS, "index.html"))

// Render writes the game page showing message. The message is HTML-escaped.
func Render(w io.Writer, message string) error {
	return page.Execute(w, struct{ Message string }{Message: message})
}
