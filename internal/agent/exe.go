package agent

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/google/shlex"
)

// DefaultExe is the agent binary name looked up when no path is configured.
const DefaultExe = "zeroclaw"

// ResolveExecutable splits exe into argv and, for the bare default name,
// locates the binary on PATH or in the usual cargo output directories.
func ResolveExecutable(exe string) ([]string, error) {
	argv, err := shlex.Split(exe)
	if err != nil {
		return nil, fmt.Errorf("parsing executable %q: %w", exe, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty agent executable")
	}
	if argv[0] != DefaultExe {
		return argv, nil
	}
	if path, err := exec.LookPath(DefaultExe); err == nil {
		argv[0] = path
		return argv, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return argv, nil
	}
	name := DefaultExe
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	for _, candidate := range []string{
		filepath.Join(home, ".cargo", "target_global", "release", name),
		filepath.Join(home, ".cargo", "bin", name),
	} {
		if _, err := os.Stat(candidate); err == nil {
			argv[0] = candidate
			return argv, nil
		}
	}
	return argv, nil
}
