// Package schema embeds the goose migrations so binaries and tests share one source.
package schema

import "embed"

//go:embed *.sql
var FS embed.FS
