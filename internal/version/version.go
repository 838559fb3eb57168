// Package version holds the application version string.
package version

// Version is the application version. Overridden at build time via
// -ldflags "-X github.com/finance-dash/backend/internal/version.Version=v1.2.3".
var Version = "0.4.0-dev"
