// Package scaffold provides the embedded starter project written by
// 'pubsite new'.
package scaffold

import "embed"

// Templates contains all scaffold files. Files with a .tmpl suffix are
// executed as Go text/templates; everything else is copied verbatim.
//
//go:embed all:templates
var Templates embed.FS
