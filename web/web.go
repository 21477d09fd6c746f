// Package web holds the server-rendered pages.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
