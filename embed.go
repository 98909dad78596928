// Package parley embeds assets shared by the commands.
package parley

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS
