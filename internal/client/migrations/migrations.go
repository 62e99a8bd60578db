// Package migrations embeds the goose migrations of the client's local
// session database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
