// Package build turns a recipe into an OCI image archive.
//
// The pipeline is a fixed, fail-fast sequence of steps, each committed as
// part of one of two container stages. The dependency stage creates the
// working directory, copies the dependency manifest, and runs the installer;
// its committed filesystem is stored in a content-addressed layer cache.
// The source stage starts from that archive, copies the application source
// tree, and exports the final image with the recipe's entrypoint and
// working directory on the config.
//
// The stage split carries the pipeline's one designed invariant: the
// manifest copy and install always precede the source copy, and their layer
// is keyed only by inputs that can change it. Editing application source
// therefore reuses the cached dependency layer, while editing the manifest,
// installer, environment, base image, or platform rebuilds it.
//
// Container operations are delegated to the runtime package. Builds are
// atomic from the caller's perspective: every failure aborts immediately,
// stage containers are always destroyed, and no partial archive is left at
// the output path.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Recipe: rcp,
//	    Name:   "ipo-bot",
//	    Output: "dist",
//	    Root:   ".",
//	})
//	if err != nil {
//	    return err
//	}
package build
