package platform

var linuxProtected = []string{
	"/boot",
	"/lib",
	"/lib64",
	"/proc",
	"/root",
	"/sys",
	"/var",
}

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir, username string) *Info {
	return &Info{
		OS:             Linux,
		HomeDir:        homeDir,
		Username:       username,
		PicturesDir:    xdgDir("XDG_PICTURES_DIR", homeDir, "Pictures"),
		VideosDir:      xdgDir("XDG_VIDEOS_DIR", homeDir, "Videos"),
		ProtectedPaths: ProtectedPaths(Linux),
	}
}
