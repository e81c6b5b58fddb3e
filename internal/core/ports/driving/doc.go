// Package driving holds the ports the CLI, TUI and MCP adapters call into:
// conversations over a loaded source and application settings. The core
// services package implements them.
package driving
