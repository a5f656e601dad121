// Package migrations embeds the counter store schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
