//go:build !linux && !darwin

package media

import (
	"os"
	"path/filepath"
)

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(filepath.Clean(f.Name()))
	return true
}
