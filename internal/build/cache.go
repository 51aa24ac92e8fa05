package build

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/kilnhq/kiln/internal/recipe"
	"github.com/kilnhq/kiln/internal/runtime"
	"github.com/opencontainers/go-digest"
)

// Content-addressed store of installed-dependency images.
//
// Each entry is a complete OCI archive of a base image plus one committed
// layer holding the working directory, the manifest, and the installed
// package set. Entries are keyed by a digest over every input that can
// change that layer, so a rebuild with only source edits resolves to the
// same entry and skips the installer entirely.
type layerCache struct {
	dir string
}

// Creates a layer cache rooted at the given directory.
func newLayerCache(dir string) *layerCache {
	return &layerCache{dir: dir}
}

// Computes the cache key for a dependency layer.
//
// The key covers the base image, the target platform, the working
// directory, the installer argument vector, the build environment, and the
// manifest contents. Application source is deliberately absent: source-only
// edits must map to the same key.
func (c *layerCache) Key(r *recipe.Recipe, platform string, manifest []byte) digest.Digest {
	var buf bytes.Buffer

	buf.WriteString(r.Image.Base)
	buf.WriteByte(0)
	buf.WriteString(platform)
	buf.WriteByte(0)
	buf.WriteString(r.Image.Workdir)
	buf.WriteByte(0)
	for _, arg := range r.Dependencies.Installer {
		buf.WriteString(arg)
		buf.WriteByte(0)
	}
	for _, entry := range environ(r.Env) {
		buf.WriteString(entry)
		buf.WriteByte(0)
	}
	buf.Write(manifest)

	return digest.FromBytes(buf.Bytes())
}

// Returns the directory holding the entry for the given key.
func (c *layerCache) EntryDir(key digest.Digest) string {
	return filepath.Join(c.dir, key.Encoded())
}

// Returns the archive path for the given key and whether it exists.
func (c *layerCache) Lookup(key digest.Digest) (string, bool) {
	path := filepath.Join(c.EntryDir(key), runtime.ExportFilename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
