package mcp

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates the dependencies of the MCP server.
type Ports struct {
	// Conversation loads sources and answers questions.
	Conversation driving.ConversationService

	// Sessions keeps client sessions addressable between tool calls.
	Sessions driven.SessionStore[driving.Session]
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Conversation == nil {
		return ErrMissingConversationService
	}
	if p.Sessions == nil {
		return ErrMissingSessionStore
	}
	return nil
}
