package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilnhq/kiln/internal/paths"
	"github.com/kilnhq/kiln/internal/recipe"
	"github.com/kilnhq/kiln/internal/runtime"
	"github.com/opencontainers/go-digest"
)

// Holds shared state for the two stages of a build.
type pipeline struct {
	rt         *runtime.Runtime     // Container runtime for image and container operations.
	recipe     *recipe.Recipe       // Recipe being built.
	name       string               // Build name, used as a prefix for container IDs.
	output     string               // Output directory for the final image archive.
	root       string               // Build context root, for resolving the manifest and source tree.
	platform   string               // Target platform.
	noCache    bool                 // Whether to bypass the dependency layer cache.
	cache      *layerCache          // Content-addressed store of dependency layers.
	containers []*runtime.Container // Stage containers, destroyed after the build completes.
}

// Creates a new [pipeline] from the given options.
func newPipeline(rt *runtime.Runtime, opts Options) *pipeline {
	return &pipeline{
		rt:       rt,
		recipe:   opts.Recipe,
		name:     opts.Name,
		output:   opts.Output,
		root:     opts.Root,
		platform: opts.Platform,
		noCache:  opts.NoCache,
		cache:    newLayerCache(opts.CacheDir),
	}
}

// Runs the build end-to-end against the container runtime.
//
// The manifest is read up front: a missing manifest aborts the build before
// the base image is even resolved, and its bytes feed the dependency layer
// cache key. The dependency stage runs only on a cache miss. All stage
// containers are destroyed when the build completes, on success or failure.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	defer p.destroyContainers(ctx)

	manifest, err := os.ReadFile(p.manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: dependency manifest: %w", ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	key := p.cache.Key(p.recipe, p.platform, manifest)

	depsArchive, hit := p.cache.Lookup(key)
	if p.noCache || !hit {
		depsArchive, err = p.buildDependencyStage(ctx, key)
		if err != nil {
			return nil, err
		}
	} else {
		slog.Info("dependency layer cached", "key", key.Encoded()[:12])
	}

	image, err := p.buildSourceStage(ctx, depsArchive)
	if err != nil {
		return nil, err
	}

	return &Result{Image: image}, nil
}

// Builds the dependency stage and stores it in the layer cache.
//
// A container is started from the base image, the working directory is
// created, the manifest is copied into it, and the installer runs against
// the copied manifest. The container's committed filesystem is exported as
// an OCI archive under the cache key and becomes the base of the source
// stage.
func (p *pipeline) buildDependencyStage(ctx context.Context, key digest.Digest) (string, error) {
	slog.Info("building dependency layer", "base", p.recipe.Image.Base, "platform", p.platform)

	tag, err := p.resolveBase(ctx)
	if err != nil {
		return "", err
	}

	ctr, err := p.rt.StartFromTag(ctx, tag, p.containerID("deps"), p.platform)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}
	p.containers = append(p.containers, ctr)

	workdir := p.recipe.Image.Workdir

	err = runSteps(ctx, []step{
		{"create working directory", func(ctx context.Context) error {
			return ctr.MkdirAll(ctx, workdir)
		}},
		{"copy dependency manifest", func(ctx context.Context) error {
			return copyFileTo(ctx, ctr, p.manifestPath(), workdir)
		}},
		{"install dependencies", func(ctx context.Context) error {
			return p.installDependencies(ctx, ctr)
		}},
	})
	if err != nil {
		return "", err
	}

	if err := ctr.Stop(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}

	entryDir := p.cache.EntryDir(key)
	if err := os.MkdirAll(entryDir, paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	archive, err := ctr.Export(ctx, entryDir, runtime.ImageConfig{})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}

	return archive, nil
}

// Runs the installer against the copied manifest.
//
// The installer's own package cache is expected to be disabled by the
// recipe's installer arguments (the default passes --no-cache-dir), so the
// committed layer contains exactly the declared packages. A non-zero exit
// aborts the build before the source stage ever starts.
func (p *pipeline) installDependencies(ctx context.Context, ctr *runtime.Container) error {
	workdir := p.recipe.Image.Workdir
	manifest := filepath.Join(workdir, filepath.Base(p.recipe.Dependencies.Manifest))
	cmd := p.recipe.Dependencies.InstallCommand(manifest)

	slog.Info("installing dependencies", "command", strings.Join(cmd, " "))

	result, err := ctr.Exec(ctx, cmd, environ(p.recipe.Env), workdir)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrDependencyInstall, result.ExitCode, result.Stderr)
	}

	if result.Stdout != "" {
		slog.Debug("installer output", "stdout", result.Stdout)
	}
	return nil
}

// Builds the source stage and exports the final image.
//
// A container is started from the dependency archive, the source tree is
// copied into the working directory (minus the manifest and any ignored
// paths), and the result is exported to the output directory with the
// recipe's entrypoint, working directory, and environment set on the image
// config.
func (p *pipeline) buildSourceStage(ctx context.Context, depsArchive string) (string, error) {
	slog.Info("building source layer", "source", p.sourcePath())

	ctr, err := p.rt.StartContainer(ctx, depsArchive, p.containerID("source"), p.platform)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}
	p.containers = append(p.containers, ctr)

	skip, err := sourceFilter(p.sourcePath(), p.manifestPath(), p.recipe.Source.Ignore, p.absOutput())
	if err != nil {
		return "", err
	}

	workdir := p.recipe.Image.Workdir

	err = runSteps(ctx, []step{
		{"copy source tree", func(ctx context.Context) error {
			return copyTreeTo(ctx, ctr, p.sourcePath(), workdir, skip)
		}},
	})
	if err != nil {
		return "", err
	}

	if err := ctr.Stop(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}

	image, err := ctr.Export(ctx, p.output, runtime.ImageConfig{
		Entrypoint: p.recipe.Entrypoint,
		WorkingDir: workdir,
		Env:        environ(p.recipe.Env),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}

	return image, nil
}

// Resolves the recipe's base image to a containerd tag.
//
// Registry references are pulled; local OCI archives are imported. Either
// way, a failure to resolve the reference surfaces as
// [ErrBaseImageNotFound].
func (p *pipeline) resolveBase(ctx context.Context) (string, error) {
	base := p.recipe.Image.Base

	if p.recipe.Image.IsArchive() {
		path := base
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.root, path)
		}

		tag := runtime.ImageTag(path)
		if err := p.rt.ImportImage(ctx, path, tag, p.platform); err != nil {
			return "", fmt.Errorf("%w: %w", ErrBaseImageNotFound, err)
		}
		return tag, nil
	}

	tag, err := p.rt.Pull(ctx, base, p.platform)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBaseImageNotFound, err)
	}
	return tag, nil
}

// Destroys all stage containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range p.containers {
		ctr.Destroy(ctx)
	}
}

// Returns the host path of the dependency manifest.
func (p *pipeline) manifestPath() string {
	return filepath.Join(p.root, p.recipe.Dependencies.Manifest)
}

// Returns the host path of the source tree.
func (p *pipeline) sourcePath() string {
	return filepath.Join(p.root, p.recipe.Source.Path)
}

// Returns the output directory as an absolute path, for comparison against
// the source tree during the copy.
func (p *pipeline) absOutput() string {
	abs, err := filepath.Abs(p.output)
	if err != nil {
		return p.output
	}
	return abs
}

// Returns a unique container ID for a stage, scoped to this build and
// platform.
func (p *pipeline) containerID(stage string) string {
	return fmt.Sprintf("%s-%s-%s", p.name, platformSlug(p.platform), stage)
}

// Converts a platform string to an identifier-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
