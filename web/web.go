// Package web embeds the signup front end served under /static.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var bundle embed.FS

// Static returns the bundle rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(bundle, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
