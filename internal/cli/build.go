package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kilnhq/kiln/internal/build"
	"github.com/kilnhq/kiln/internal/recipe"
	"github.com/kilnhq/kiln/internal/runtime"
)

// Represents the 'kiln build' command.
type BuildCmd struct {
	Recipe  string `arg:"" help:"Path to the recipe file." type:"existingfile"`
	Output  string `short:"o" default:"dist" help:"Directory for the exported image archive."`
	Context string `short:"c" help:"Build context root. Defaults to the recipe file's directory." placeholder:"DIR"`
	Name    string `short:"n" help:"Build name, used as a prefix for container IDs. Defaults to the recipe file's base name." placeholder:"NAME"`
	NoCache bool   `help:"Ignore the dependency layer cache and rebuild it."`

	Platform            string `help:"Target platform (e.g., linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`
	ContainerdAddress   string `default:"/run/containerd/containerd.sock" help:"Containerd socket address." placeholder:"PATH"`
	ContainerdNamespace string `default:"kiln" help:"Containerd namespace for images and containers." placeholder:"NS"`
}

// Executes the build command.
//
// Loads the recipe, connects to containerd, and runs the build pipeline.
// Exits zero only when a complete image archive was produced; any failing
// step aborts the build and surfaces its error to the caller.
func (c *BuildCmd) Run(ctx context.Context) error {
	rcp, err := recipe.Load(c.Recipe)
	if err != nil {
		return err
	}

	rt, err := runtime.New(c.ContainerdAddress, c.ContainerdNamespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, rt, build.Options{
		Recipe:   rcp,
		Name:     c.buildName(),
		Output:   c.Output,
		Root:     c.contextRoot(),
		Platform: c.Platform,
		NoCache:  c.NoCache,
	})
	if err != nil {
		return err
	}

	slog.Info("build complete", "image", result.Image)
	fmt.Println(result.Image)
	return nil
}

// Returns the build name, derived from the recipe file name when the flag
// is unset.
func (c *BuildCmd) buildName() string {
	if c.Name != "" {
		return c.Name
	}
	base := filepath.Base(c.Recipe)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Returns the build context root, defaulting to the recipe file's directory.
func (c *BuildCmd) contextRoot() string {
	if c.Context != "" {
		return c.Context
	}
	return filepath.Dir(c.Recipe)
}
