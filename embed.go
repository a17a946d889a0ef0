package pubsite

import "embed"

// Layouts contains the HTML skeletons shipped with pubsite:
// base.html wraps every page, list.html renders post listings.
//
//go:embed layouts/*.html
var Layouts embed.FS
