// Package migrations embeds the PostgreSQL schema so the binaries carry it.
package migrations

import "embed"

//go:embed postgres/*.sql
var FS embed.FS

// Dir is the directory inside FS holding the migration files.
const Dir = "postgres"
