// Package migrations embeds the postgresstore schema migrations so they
// ship inside the binary. Grounded on dittofs's
// pkg/store/metadata/postgres/migrations package.
package migrations

import "embed"

// FS holds the embedded .sql migration files.
//
//go:embed *.sql
var FS embed.FS
