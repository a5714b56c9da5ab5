// Package migrations embeds the storefront's SQL migrations for goose.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
