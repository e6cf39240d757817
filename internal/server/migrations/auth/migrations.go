// Package auth embeds the goose migrations for the auth store.
package auth

import "embed"

//go:embed *.sql
var Migrations embed.FS
