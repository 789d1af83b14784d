// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "glolotto/internal/platform/net/http"
)

// Module is what a binary composes: routes under Prefix and a Ports bundle other
// modules or binaries pull from. It lives apart from modkit so a module package
// can export its own Ports type without an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
	Prefix() string
}
