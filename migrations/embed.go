// Package migrations embeds the SQL applied by the postgres token-store backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
