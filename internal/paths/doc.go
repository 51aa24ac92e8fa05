// Provides platform-appropriate paths for the builder.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The tool name "kiln" is used as the subdirectory
// under each base path. The layer cache lives under the XDG cache home so
// it survives reboots; runtime files (socket, PID) live under the runtime
// directory and do not.
package paths
