// Package assets embeds everything the binary ships with: SQL migrations
// and the browser client.
package assets

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed sql/*.sql
var Migrations embed.FS

//go:embed web
var webFS embed.FS

// Web returns the browser client rooted at its index.html.
func Web() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// only fails if the embed pattern above changes
		panic(err)
	}
	return sub
}

// WebHandler serves the browser client.
func WebHandler() http.Handler {
	return http.FileServer(http.FS(Web()))
}
