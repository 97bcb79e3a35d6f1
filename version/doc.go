// Package version reports build information for httpservice binaries and
// the default User-Agent header.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/httpservice/version.Version=1.0.0"
package version
