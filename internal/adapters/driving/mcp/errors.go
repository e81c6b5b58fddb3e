// Package mcp provides an MCP (Model Context Protocol) server adapter for docchat.
// It lets AI assistants load documents and ask grounded questions about them.
package mcp

import "errors"

// ErrMissingConversationService is returned when the conversation service is not provided.
var ErrMissingConversationService = errors.New("mcp: conversation service is required")

// ErrMissingSessionStore is returned when no session store is provided.
var ErrMissingSessionStore = errors.New("mcp: session store is required")
