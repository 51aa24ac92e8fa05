package build

import "errors"

var (
	ErrBuild               = errors.New("build failed")
	ErrBaseImageNotFound   = errors.New("base image not found")
	ErrSourceNotFound      = errors.New("source not found")
	ErrDependencyInstall   = errors.New("dependency install failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
	ErrCopy                = errors.New("copy failed")
)
