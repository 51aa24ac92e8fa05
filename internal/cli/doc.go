// Parses flags and dispatches the kiln subcommands.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the selected command runs.
//
// The build command is the primary surface: it loads a recipe file, runs the
// build pipeline against containerd, prints the resulting archive path on
// stdout, and exits zero only on success. The serve command runs the same
// pipeline behind a Unix domain socket for external build tools.
package cli
