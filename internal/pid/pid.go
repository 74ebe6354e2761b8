// Package pid guards against two instances claiming the same serial
// port by writing a PID file. A stale file left by a crashed run is
// replaced silently.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/twentefluids/dodecalog/internal/errors"
)

const pidFile = "dodecalog.pid"

func path() string {
	return filepath.Join(os.TempDir(), pidFile)
}

// Write writes the current process ID to the PID file. It fails with
// ErrAlreadyRunning when the recorded process is still alive.
func Write() error {
	errFactory := errors.New()

	if bytes, err := os.ReadFile(path()); err == nil {
		if old, err := strconv.Atoi(string(bytes)); err == nil {
			if process, err := os.FindProcess(old); err == nil {
				if process.Signal(syscall.Signal(0)) == nil {
					return errFactory.WithData(errors.ErrAlreadyRunning, old)
				}
			}
		}
	}

	if err := os.WriteFile(path(), []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	if _, err := os.Stat(path()); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path()); err != nil {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}
