// Package migrations embeds the Postgres schema migrations.
package migrations

import "embed"

// FS contains every *_up.sql and *_down.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
