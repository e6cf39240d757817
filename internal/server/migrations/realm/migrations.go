// Package realm embeds the goose migrations for a realm's game store.
package realm

import "embed"

//go:embed *.sql
var Migrations embed.FS
