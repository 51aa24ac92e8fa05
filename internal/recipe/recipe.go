package recipe

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/distribution/reference"
)

// Returned for any recipe that cannot be parsed or fails validation.
var ErrRecipe = errors.New("invalid recipe")

// Default values applied to fields the recipe leaves unset.
var (
	defaultWorkdir   = "/app"
	defaultManifest  = "requirements.txt"
	defaultInstaller = []string{"pip", "install", "--no-cache-dir", "-r"}
	defaultSource    = "."
	defaultIgnore    = ".kilnignore"
)

// Describes a single image build: where to start from, what to install,
// what to copy, and what the image runs.
type Recipe struct {
	Image        Image             `toml:"image" json:"image"`
	Dependencies Dependencies      `toml:"dependencies" json:"dependencies"`
	Source       Source            `toml:"source" json:"source"`
	Entrypoint   []string          `toml:"entrypoint" json:"entrypoint"`
	Env          map[string]string `toml:"env,omitempty" json:"env,omitempty"`
}

// Names the base image and the working directory inside it.
type Image struct {
	Base    string `toml:"base" json:"base"`
	Workdir string `toml:"workdir" json:"workdir"`
}

// Names the dependency manifest and the installer invoked against it.
//
// The installer is an argument vector; the builder appends the in-container
// manifest path as its final argument. The default installs a pip
// requirements file with pip's local package cache disabled, so the
// resulting layer contains exactly the declared packages.
type Dependencies struct {
	Manifest  string   `toml:"manifest" json:"manifest"`
	Installer []string `toml:"installer" json:"installer"`
}

// Names the application source tree and its ignore file.
type Source struct {
	Path   string `toml:"path" json:"path"`
	Ignore string `toml:"ignore" json:"ignore"`
}

// Reads and validates a recipe file.
//
// Missing optional fields are filled with defaults before validation, so a
// minimal recipe only needs a base image and an entrypoint.
func Load(path string) (*Recipe, error) {
	var r Recipe
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecipe, err)
	}
	return finish(&r)
}

// Parses and validates a recipe from raw TOML.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecipe, err)
	}
	return finish(&r)
}

// Applies defaults and validates the recipe.
func finish(r *Recipe) (*Recipe, error) {
	if err := r.Finalize(); err != nil {
		return nil, err
	}
	return r, nil
}

// Applies defaults and validates a recipe assembled outside [Load] and
// [Parse], such as one received over the wire.
func (r *Recipe) Finalize() error {
	r.applyDefaults()
	return r.Validate()
}

// Fills unset optional fields with their defaults.
func (r *Recipe) applyDefaults() {
	if r.Image.Workdir == "" {
		r.Image.Workdir = defaultWorkdir
	}
	if r.Dependencies.Manifest == "" {
		r.Dependencies.Manifest = defaultManifest
	}
	if len(r.Dependencies.Installer) == 0 {
		r.Dependencies.Installer = defaultInstaller
	}
	if r.Source.Path == "" {
		r.Source.Path = defaultSource
	}
	if r.Source.Ignore == "" {
		r.Source.Ignore = defaultIgnore
	}
}

// Checks the recipe for fields that would make the build fail or behave
// unpredictably.
func (r *Recipe) Validate() error {
	if r.Image.Base == "" {
		return fmt.Errorf("%w: image.base is required", ErrRecipe)
	}
	if !r.Image.IsArchive() {
		if _, err := reference.ParseDockerRef(r.Image.Base); err != nil {
			return fmt.Errorf("%w: image.base %q: %w", ErrRecipe, r.Image.Base, err)
		}
	}

	if !filepath.IsAbs(r.Image.Workdir) {
		return fmt.Errorf("%w: image.workdir %q must be absolute", ErrRecipe, r.Image.Workdir)
	}

	if err := validateContextPath("dependencies.manifest", r.Dependencies.Manifest); err != nil {
		return err
	}
	if err := validateContextPath("source.path", r.Source.Path); err != nil {
		return err
	}

	if len(r.Entrypoint) == 0 {
		return fmt.Errorf("%w: entrypoint is required", ErrRecipe)
	}

	return nil
}

// Checks that a recipe path stays inside the build context.
func validateContextPath(field, path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("%w: %s %q must be relative to the build context", ErrRecipe, field, path)
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s %q escapes the build context", ErrRecipe, field, path)
	}
	return nil
}

// Reports whether the base refers to a local OCI archive instead of a
// registry reference.
func (i Image) IsArchive() bool {
	return strings.HasSuffix(i.Base, ".tar")
}

// Returns the full installer argument vector for the manifest at the given
// in-container path.
func (d Dependencies) InstallCommand(manifestPath string) []string {
	cmd := make([]string, 0, len(d.Installer)+1)
	cmd = append(cmd, d.Installer...)
	return append(cmd, manifestPath)
}
