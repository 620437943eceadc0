// Package templates carries the server-rendered HTML pages.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
