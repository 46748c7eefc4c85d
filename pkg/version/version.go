package version

import "runtime/debug"

var version = "dev"

// Version returns the build string embedded via -ldflags when available,
// falling back to the module version recorded by `go install`.
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
