// Package recipe defines the build recipe file format.
//
// A recipe is a small TOML document naming the base image, the dependency
// manifest, the source tree, and the entrypoint of the image to build. The
// manifest format and installer are deliberately opaque: the recipe carries
// an installer argument vector and the builder appends the manifest path,
// so swapping ecosystems (pip, npm, bundler) means editing two fields.
//
// A minimal recipe:
//
//	entrypoint = ["python", "main.py"]
//
//	[image]
//	base = "docker.io/library/python:3.12-slim"
//
// A complete recipe:
//
//	entrypoint = ["python", "main.py"]
//
//	[image]
//	base = "docker.io/library/python:3.12-slim"
//	workdir = "/app"
//
//	[dependencies]
//	manifest = "requirements.txt"
//	installer = ["pip", "install", "--no-cache-dir", "-r"]
//
//	[source]
//	path = "."
//	ignore = ".kilnignore"
//
//	[env]
//	PYTHONUNBUFFERED = "1"
//
// The base may also be a path to a local OCI archive (anything ending in
// ".tar"), in which case the archive is imported instead of pulled.
package recipe
