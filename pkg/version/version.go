package version

import "runtime/debug"

// version is stamped with -ldflags "-X github.com/vinodismyname/mcprealty/pkg/version.version=v1.2.3".
var version = "dev"

// Version returns the stamped version, else the module version from build info, else
// "dev+<short vcs revision>" for local builds.
func Version() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return version + "+" + s.Value[:7]
		}
	}
	return version
}

// Set overrides the version when ldflags are not provided.
func Set(v string) {
	if v != "" {
		version = v
	}
}
