// ABOUTME: Durable session-presence flag stored in the state directory
// ABOUTME: The single persisted signal that a session was previously established

package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const flagFileName = "session_active"

// FileFlag persists the presence flag as a one-byte sentinel file containing
// "1". Only the session store and the refresh coordinator write it; everyone
// else treats it as a read-only signal.
type FileFlag struct {
	path string
}

// NewFileFlag returns a flag stored under dir.
func NewFileFlag(dir string) *FileFlag {
	return &FileFlag{path: filepath.Join(dir, flagFileName)}
}

// Active reports whether a session is believed to exist.
func (f *FileFlag) Active() bool {
	data, err := os.ReadFile(f.path)
	return err == nil && strings.TrimSpace(string(data)) == "1"
}

// Set marks a session as established.
func (f *FileFlag) Set() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte("1"), 0o600)
}

// Clear removes the flag. Clearing an absent flag is not an error.
func (f *FileFlag) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
