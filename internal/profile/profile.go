// Package profile prepares the isolated agent profile a benchmark runs in.
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	ConfigFile = "config.toml"
	lockFile   = ".agentbench.lock"
)

// ErrLocked means another run already holds the profile.
var ErrLocked = errors.New("profile is locked by another run")

// ConfigPath returns the agent config file inside root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// Ensure creates root and its workspace directory, seeding config.toml from
// source when root has none yet.
func Ensure(root, source string) error {
	if err := os.MkdirAll(filepath.Join(root, "workspace"), 0o755); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	target := ConfigPath(root)
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking profile config: %w", err)
	}

	src := ConfigPath(source)
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("source config not found: %s (run zeroclaw onboarding first)", src)
	}
	return copyFile(src, target)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source config: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source config: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating profile config: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying profile config: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// best effort, the copy is already complete
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// Lock takes a non-blocking exclusive lock on root. The returned func
// releases it.
func Lock(root string) (func() error, error) {
	fl := flock.New(filepath.Join(root, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking profile: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}
	return fl.Unlock, nil
}
