// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the golang-migrate files; the source directory is ".".
//
//go:embed *.sql
var FS embed.FS
