// Package version reports the version of the mensura tool.
package version

import "runtime/debug"

// You can set the version at build time using something like:
// go build -ldflags "-X github.com/mensura/mensura/version.Version=$(git describe --dirty)"

var Version string

// Hash is the short VCS revision the binary was built from, with a -dirty
// suffix for modified trees. Empty when the build carries no VCS info.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()

func revision(settings []debug.BuildSetting) string {
	var hash string
	modified := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			hash = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if hash != "" && modified {
		hash += "-dirty"
	}
	return hash
}
