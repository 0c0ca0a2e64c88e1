// Package localstate locates per-user files kept by journalctl.
package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome  = "JOURNAL_HOME"   // override for tests
	dirName  = ".audhd-journal" // default under $HOME
	audioDir = "audio"
)

// DataDir returns the directory where local state is stored (~/.audhd-journal).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// AudioDir returns the directory synthesized replies are saved to.
func AudioDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, audioDir), nil
}
