// Package ticketing embeds static assets shipped with the binary.
package ticketing

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS
