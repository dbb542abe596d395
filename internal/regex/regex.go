package regex

import "regexp"

var (
	// Git remote URL patterns
	SSHRepo   = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/(.+?)(?:\.git)?/?$`)
	HTTPSRepo = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`)
)
