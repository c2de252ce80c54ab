package platform

import "path/filepath"

// /var is left out: per-user temp dirs live under /var/folders
var macOSProtected = []string{
	"/System",
	"/Applications",
	"/Library",
	"/private/etc",
	"/cores",
}

// getMacOSInfo returns platform-specific information for macOS
func getMacOSInfo(homeDir, username string) *Info {
	return &Info{
		OS:             MacOS,
		HomeDir:        homeDir,
		Username:       username,
		PicturesDir:    filepath.Join(homeDir, "Pictures"),
		VideosDir:      filepath.Join(homeDir, "Movies"),
		ProtectedPaths: ProtectedPaths(MacOS),
	}
}
