// Package appfs embeds the files shipped with the binaries: SQL migrations and HTML/text templates.
package appfs

import "embed"

// all: keeps the underscore-prefixed layouts (_layout.gohtml, _base.*).
//
//go:embed migrations all:templates
var FS embed.FS
