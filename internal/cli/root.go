package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/kilnhq/kiln/internal"
)

// Represents the root command for the kiln image builder.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Build   BuildCmd   `cmd:"" help:"Build an image from a recipe file."`
	Serve   ServeCmd   `cmd:"" help:"Run as a daemon accepting build requests on a Unix socket."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Bakes application source and a dependency manifest into an OCI image.\n\nA recipe file names the base image, the dependency manifest, the source tree, and the entrypoint. The manifest is copied and installed before the source tree so that source-only edits reuse the cached dependency layer."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags override the build-time defaults, and the effective modes are
// written back so the rest of the program sees a single source of truth.
func configureLogger() {
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	handler, ok := slog.Default().Handler().(*charmlog.Logger)
	if !ok {
		return // Not a charmlog handler, nothing to configure
	}

	switch {
	case internal.IsDebug():
		handler.SetLevel(charmlog.DebugLevel)
	case internal.IsQuiet():
		handler.SetLevel(charmlog.WarnLevel)
	default:
		handler.SetLevel(charmlog.InfoLevel)
	}

	handler.SetReportCaller(internal.IsVerbose())
	handler.SetReportTimestamp(internal.IsVerbose() && isatty(os.Stderr))
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
