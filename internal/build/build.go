package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kilnhq/kiln/internal/paths"
	"github.com/kilnhq/kiln/internal/recipe"
	"github.com/kilnhq/kiln/internal/runtime"
)

// Controls a build.
type Options struct {
	Recipe   *recipe.Recipe // Recipe to build.
	Name     string         // Build name, used as a prefix for container IDs.
	Output   string         // Directory for the exported image archive.
	Root     string         // Build context root, for resolving the manifest and source tree.
	Platform string         // Target platform (e.g., "linux/amd64"). Defaults to host.
	NoCache  bool           // Skip the dependency layer cache and rebuild it.
	CacheDir string         // Override for the layer cache directory. Empty uses the default.
}

// Returned after a successful build.
type Result struct {
	Image string // Path to the exported OCI archive.
}

// Builds an image from a recipe against the container runtime.
//
// The pipeline is a fixed, fail-fast sequence: resolve the base image,
// create the working directory, copy the dependency manifest, run the
// installer, copy the source tree, and export the result with the declared
// entrypoint. The manifest copy and install are committed as their own
// layer and cached, so rebuilds with an unchanged manifest skip the
// installer entirely. Any step failure aborts the build; no partial image
// is ever written to the output path.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = runtime.DefaultPlatform()
	}
	if opts.CacheDir == "" {
		opts.CacheDir = paths.LayerCache()
	}

	slog.Info("executing recipe",
		"name", opts.Name,
		"base", opts.Recipe.Image.Base,
		"output", opts.Output,
		"platform", opts.Platform,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newPipeline(rt, opts).run(ctx)
}
