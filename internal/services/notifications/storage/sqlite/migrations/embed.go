// Package migrations embeds the notification store schema.
package migrations

import "embed"

// FS holds the notification store migration files.
//
//go:embed *.sql
var FS embed.FS
