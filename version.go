package easel

import (
	_ "embed"
)

// Version is the library version, sourced from the VERSION file at the
// repository root. Call sites trim the trailing newline.
//
//go:embed VERSION
var Version string
