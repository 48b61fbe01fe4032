// Package version exposes the application version string.
package version

// Version is the application version, overridable at build time via
// -ldflags "-X github.com/advisorly/review-engine-backend/internal/version.Version=x.y.z".
var Version = "dev"
