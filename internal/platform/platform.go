package platform

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// ErrUnsupportedPlatform is returned by GetInfo outside macOS and Linux
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Info holds the per-user locations dupsweep cares about
type Info struct {
	OS             Platform
	HomeDir        string
	Username       string
	PicturesDir    string
	VideosDir      string
	ProtectedPaths []string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// GetInfo returns platform-specific information for the current user
func GetInfo() (*Info, error) {
	p := Detect()
	if p == Unknown {
		return nil, ErrUnsupportedPlatform
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}
	return infoFor(p, currentUser.HomeDir, currentUser.Username), nil
}

func infoFor(p Platform, homeDir, username string) *Info {
	switch p {
	case MacOS:
		return getMacOSInfo(homeDir, username)
	case Linux:
		return getLinuxInfo(homeDir, username)
	default:
		return &Info{OS: Unknown, HomeDir: homeDir, Username: username, ProtectedPaths: commonProtected}
	}
}

// ProtectedPaths returns the system paths nothing is ever deleted from on p
func ProtectedPaths(p Platform) []string {
	var extra []string
	switch p {
	case MacOS:
		extra = macOSProtected
	case Linux:
		extra = linuxProtected
	}
	out := make([]string, 0, len(commonProtected)+len(extra))
	out = append(out, commonProtected...)
	return append(out, extra...)
}

var commonProtected = []string{
	"/",
	"/bin",
	"/dev",
	"/etc",
	"/sbin",
	"/usr",
}

// xdgDir resolves an XDG user directory from the environment, falling back
// to a directory under home
func xdgDir(env, homeDir, fallback string) string {
	if dir := os.Getenv(env); dir != "" && filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(homeDir, fallback)
}
