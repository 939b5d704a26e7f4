// Package version provides build version information.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/weld/version.Version=1.0.0"
//
// The short version is the default service.version of telemetry resources.
package version
