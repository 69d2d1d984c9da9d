package http

import (
	"time"

	"github.com/playlift/playlift/internal/version"
)

const (
	// DefaultTimeout is the default timeout duration for catalog API requests.
	DefaultTimeout = 10 * time.Second
)

// DefaultUserAgent identifies the tool to the catalog APIs. The version part
// is injected at link time, so this cannot be a constant.
//
//nolint:gochecknoglobals // Derived from build metadata once at startup.
var DefaultUserAgent = "playlift/" + version.Short()
