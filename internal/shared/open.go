package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openCommand returns the system command that hands target (a file path or URL) to the default viewer.
func openCommand(target string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("%w: no viewer for platform %s", ErrNotImplemented, rt)
	}
}

// OpenExternal opens a media file or URL in the system's default viewer without waiting for it to exit.
func OpenExternal(target string) error {
	if target == "" {
		return fmt.Errorf("%w: empty target", ErrMissingArgument)
	}
	cmd, err := openCommand(target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}
