// Package migrations embeds the schema so tests and tooling can apply it
// without a filesystem checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
