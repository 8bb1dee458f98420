// Package migrations embeds the SQL schema migrations for the run history.
package migrations

import "embed"

// FS contains the migration files, named NNN_description.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS
