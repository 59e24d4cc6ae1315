// Package common provides shared types and constants used across the
// pubdeck client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom daemon
	// socket path.
	SocketPathEnv = "PUBDECK_SOCKET_PATH"

	// ConfigPathEnv is the environment variable for a custom config
	// file path.
	ConfigPathEnv = "PUBDECK_CONFIG"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "PUBDECK_DEBUG"
)
