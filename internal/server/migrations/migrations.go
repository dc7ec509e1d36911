// Package migrations embeds the goose migration scripts for the
// credential store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
