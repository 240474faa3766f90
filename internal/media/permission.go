package media

import (
	"os"
	"path/filepath"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/share"
)

// DirPermissions grants the storage write permission when the media
// directory, or the closest existing ancestor it would be created in, is
// writable by this process.
type DirPermissions struct {
	Dir string
}

// Check probes the permission
func (p DirPermissions) Check(permission string) bool {
	if permission != share.WriteExternalStorage {
		return false
	}

	dir, err := filepath.Abs(p.Dir)
	if err != nil {
		return false
	}
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}

	ok := writable(dir)
	logger.WithComponent("media").Debug().
		Str("dir", dir).
		Bool("writable", ok).
		Msg("Storage permission probed")
	return ok
}
