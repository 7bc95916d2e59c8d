// Package templates holds the HTML pages served by the web server
package templates

import "embed"

//go:embed *.html
var FS embed.FS
