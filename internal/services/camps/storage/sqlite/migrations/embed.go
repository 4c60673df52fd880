// Package migrations embeds the camp store schema.
package migrations

import "embed"

// FS holds the camp store migration files.
//
//go:embed *.sql
var FS embed.FS
