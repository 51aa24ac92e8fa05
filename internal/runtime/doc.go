// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image
// resolution and container creation. Base images are either pulled from a
// registry or imported from an OCI archive, unpacked for the target
// platform, and used to create containers with overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Commands can be
// executed inside the container, files can be copied in as tar streams,
// and the final filesystem state can be committed and exported as a new
// OCI archive with a declared entrypoint and working directory. When the
// container is no longer needed it should be destroyed to release its
// snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "kiln")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	tag, err := rt.Pull(ctx, "python:3.12-slim", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//
//	ctr, err := rt.StartFromTag(ctx, tag, "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, []string{"pip", "install", "-r", "requirements.txt"}, nil, "/app")
//	if err != nil {
//	    return err
//	}
//
//	path, err := ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Entrypoint: []string{"python", "main.py"},
//	    WorkingDir: "/app",
//	})
package runtime
