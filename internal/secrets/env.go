package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// IsWSL reports whether the process runs under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	v := strings.ToLower(string(data))
	return strings.Contains(v, "microsoft") || strings.Contains(v, "wsl")
}

// IsHeadless reports a Linux session without a display server. Other
// platforms are assumed to have a usable keyring.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}

// warnOnce prints msg to stderr unless EXCH_QUIET is set or the warning was
// already shown in an earlier run. A marker file keeps repeat commands quiet.
func warnOnce(msg string) {
	if quiet() || markerExists() {
		return
	}

	fmt.Fprintln(os.Stderr, msg)
}

// markWarningsDone persists the marker once the fallback store is in use.
func markWarningsDone() {
	if !markerExists() {
		_ = os.WriteFile(markerPath(), []byte("1"), 0600)
	}
}

func quiet() bool {
	q := os.Getenv("EXCH_QUIET")
	return q == "1" || q == "true"
}

func markerExists() bool {
	_, err := os.Stat(markerPath())
	return err == nil
}

func markerPath() string {
	return filepath.Join(xdg.DataHome, "exch", ".file-store-warning-shown")
}
