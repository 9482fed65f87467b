// Package scripts embeds the Risor head-rule scripts shipped with tregex.
package scripts

import "embed"

// FS holds headrules/*.risor.
//
//go:embed headrules/*.risor
var FS embed.FS
