package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docchat resources.
	uriScheme = "docchat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Open conversation sessions and their loaded sources",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session",
		Description: "State and per-source history of one session",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// sessionInfo summarises a session for listing.
type sessionInfo struct {
	ID     string `json:"id"`
	Active string `json:"active,omitempty"`
	Source string `json:"source,omitempty"`
	Chunks int    `json:"chunks"`
}

// handleSessionsResource lists the open sessions in creation order.
func (s *Server) handleSessionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ids := s.ports.Sessions.IDs()
	infos := make([]sessionInfo, 0, len(ids))
	for _, id := range ids {
		session, ok := s.ports.Sessions.Get(id)
		if !ok {
			continue
		}
		snap := session.Snapshot()
		infos = append(infos, sessionInfo{
			ID:     snap.ID,
			Active: snap.Active.String(),
			Source: snap.Source,
			Chunks: snap.Chunks,
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sessions: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleSessionResource returns the snapshot of one session.
func (s *Server) handleSessionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSessionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	session, ok := s.ports.Sessions.Get(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap := session.Snapshot()
	type sessionDetail struct {
		sessionInfo
		States    map[string]string       `json:"states"`
		Histories map[string][]TurnOutput `json:"histories"`
	}
	detail := sessionDetail{
		sessionInfo: sessionInfo{
			ID:     snap.ID,
			Active: snap.Active.String(),
			Source: snap.Source,
			Chunks: snap.Chunks,
		},
		States:    make(map[string]string, len(snap.States)),
		Histories: make(map[string][]TurnOutput, len(snap.Histories)),
	}
	for kind, state := range snap.States {
		detail.States[kind.String()] = state.String()
	}
	for kind, turns := range snap.Histories {
		out := make([]TurnOutput, len(turns))
		for i, t := range turns {
			out[i] = TurnOutput{Role: t.Role.String(), Content: t.Content}
		}
		detail.Histories[kind.String()] = out
	}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling session: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractSessionID extracts the session ID from a URI like docchat://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
