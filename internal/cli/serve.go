package cli

import (
	"context"
	"log/slog"

	"github.com/kilnhq/kiln/internal/server"
)

// Represents the 'kiln serve' command.
type ServeCmd struct {
	Socket              string `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`
	ContainerdAddress   string `default:"/run/containerd/containerd.sock" help:"Containerd socket address." placeholder:"PATH"`
	ContainerdNamespace string `default:"kiln" help:"Containerd namespace for images and containers." placeholder:"NS"`
}

// Executes the serve command.
//
// Starts the build server on a Unix domain socket and blocks until the
// context is cancelled (e.g. via SIGINT or SIGTERM) or a client requests
// shutdown.
func (c *ServeCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          c.Socket,
		ContainerdAddress:   c.ContainerdAddress,
		ContainerdNamespace: c.ContainerdNamespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("kiln is accepting build requests")

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-srv.Done():
		return nil
	}
}
