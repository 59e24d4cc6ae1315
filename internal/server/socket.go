package server

import (
	"os"
	"path/filepath"

	"github.com/pubdeck/pubdeck/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "pubdeckd.sock")
}
