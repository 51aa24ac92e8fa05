package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "kiln"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/kiln or /run/user/<uid>/kiln
//	macOS:   ~/Library/Caches/kiln/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default path to the Unix domain socket for build requests.
//
//	Linux:   $XDG_RUNTIME_DIR/kiln/kiln.sock
//	macOS:   ~/Library/Caches/kiln/run/kiln.sock
func Socket() string {
	return filepath.Join(Runtime(), toolName+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/kiln/kiln.pid
//	macOS:   ~/Library/Caches/kiln/run/kiln.pid
func PIDFile() string {
	return filepath.Join(Runtime(), toolName+".pid")
}

// Path to the dependency layer cache.
//
// Intermediate images holding an installed dependency set are stored here,
// keyed by a content digest over their inputs.
//
//	Linux:   ~/.cache/kiln/layers
//	macOS:   ~/Library/Caches/kiln/layers
func LayerCache() string {
	return filepath.Join(xdg.CacheHome, toolName, "layers")
}
