// Package env holds build-time version metadata, stamped via -ldflags at
// release build time (e.g. -X github.com/ostafen/isocarve/internal/env.Version=v1.2.3).
package env

var (
	Version    = "dev"
	CommitHash = "none"
	BuildTime  = "unknown"
)
