// Package web embeds the HTML views and static assets served by the app.
package web

import (
	"embed"
	"io/fs"
)

//go:embed views/*.html views/partials/*.html
var views embed.FS

//go:embed public/*
var public embed.FS

// Views returns the template tree rooted at views/.
func Views() fs.FS {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// Public returns the static asset tree rooted at public/.
func Public() fs.FS {
	sub, err := fs.Sub(public, "public")
	if err != nil {
		panic(err)
	}
	return sub
}
