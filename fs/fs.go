// Package appfs exposes embedded assets to the rest of the application.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
