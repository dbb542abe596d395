package version

// Version is the current relnotes release. Update it on every release.
const Version = "0.3.0"

// FullVersion returns the version with the v prefix used by git tags.
func FullVersion() string {
	return "v" + Version
}
