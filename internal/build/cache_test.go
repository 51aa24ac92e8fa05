package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilnhq/kiln/internal/recipe"
)

func testRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Image: recipe.Image{
			Base:    "docker.io/library/python:3.12-slim",
			Workdir: "/app",
		},
		Dependencies: recipe.Dependencies{
			Manifest:  "requirements.txt",
			Installer: []string{"pip", "install", "--no-cache-dir", "-r"},
		},
		Source:     recipe.Source{Path: ".", Ignore: ".kilnignore"},
		Entrypoint: []string{"python", "main.py"},
		Env:        map[string]string{"PYTHONUNBUFFERED": "1"},
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	c := newLayerCache(t.TempDir())
	manifest := []byte("requests==2.31.0\n")

	a := c.Key(testRecipe(), "linux/amd64", manifest)
	b := c.Key(testRecipe(), "linux/amd64", manifest)
	if a != b {
		t.Fatalf("identical inputs produced different keys: %s vs %s", a, b)
	}
}

func TestCacheKeySensitivity(t *testing.T) {
	c := newLayerCache(t.TempDir())
	manifest := []byte("requests==2.31.0\n")
	base := c.Key(testRecipe(), "linux/amd64", manifest)

	tests := []struct {
		name     string
		mutate   func(*recipe.Recipe)
		platform string
		manifest []byte
	}{
		{
			name:     "manifest contents",
			mutate:   func(r *recipe.Recipe) {},
			platform: "linux/amd64",
			manifest: []byte("requests==2.32.0\n"),
		},
		{
			name:     "base image",
			mutate:   func(r *recipe.Recipe) { r.Image.Base = "docker.io/library/python:3.13-slim" },
			platform: "linux/amd64",
			manifest: manifest,
		},
		{
			name:     "platform",
			mutate:   func(r *recipe.Recipe) {},
			platform: "linux/arm64",
			manifest: manifest,
		},
		{
			name:     "workdir",
			mutate:   func(r *recipe.Recipe) { r.Image.Workdir = "/srv" },
			platform: "linux/amd64",
			manifest: manifest,
		},
		{
			name:     "installer args",
			mutate:   func(r *recipe.Recipe) { r.Dependencies.Installer = []string{"pip", "install", "-r"} },
			platform: "linux/amd64",
			manifest: manifest,
		},
		{
			name:     "env",
			mutate:   func(r *recipe.Recipe) { r.Env["PIP_INDEX_URL"] = "https://mirror.internal/simple" },
			platform: "linux/amd64",
			manifest: manifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRecipe()
			tt.mutate(r)
			if got := c.Key(r, tt.platform, tt.manifest); got == base {
				t.Fatalf("key unchanged after mutating %s", tt.name)
			}
		})
	}
}

// Editing application source must not invalidate the dependency layer: the
// key is computed purely from the base image, platform, workdir, installer,
// env, and manifest bytes.
func TestCacheKeyIgnoresSource(t *testing.T) {
	c := newLayerCache(t.TempDir())
	manifest := []byte("requests==2.31.0\n")

	a := c.Key(testRecipe(), "linux/amd64", manifest)

	r := testRecipe()
	r.Source.Path = "completely/different"
	r.Entrypoint = []string{"python", "other.py"}
	b := c.Key(r, "linux/amd64", manifest)

	if a != b {
		t.Fatal("source or entrypoint changes altered the dependency layer key")
	}
}

func TestCacheKeyFieldBoundaries(t *testing.T) {
	c := newLayerCache(t.TempDir())

	// "ab"+"c" and "a"+"bc" across a field boundary must not collide.
	r1 := testRecipe()
	r1.Image.Base = "ab"
	r1.Image.Workdir = "/x"
	k1 := c.Key(r1, "c", nil)

	r2 := testRecipe()
	r2.Image.Base = "a"
	r2.Image.Workdir = "/x"
	k2 := c.Key(r2, "bc", nil)

	if k1 == k2 {
		t.Fatal("field boundary collision in cache key")
	}
}

func TestCacheLookup(t *testing.T) {
	dir := t.TempDir()
	c := newLayerCache(dir)
	key := c.Key(testRecipe(), "linux/amd64", []byte("requests\n"))

	if _, ok := c.Lookup(key); ok {
		t.Fatal("lookup hit on empty cache")
	}

	entry := c.EntryDir(key)
	if err := os.MkdirAll(entry, 0755); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(entry, "image.tar")
	if err := os.WriteFile(archive, []byte("tar"), 0644); err != nil {
		t.Fatal(err)
	}

	path, ok := c.Lookup(key)
	if !ok {
		t.Fatal("lookup missed a stored entry")
	}
	if path != archive {
		t.Fatalf("path = %q, want %q", path, archive)
	}
}
