// Package migrations embeds the schema so the daemon does not depend on its
// working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
