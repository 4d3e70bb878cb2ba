// Package migrations embeds the SQL schema so the binary can bring a fresh
// database up by itself.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
