package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

// LoadSourceInput is the input schema for the load_source tool.
type LoadSourceInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session to load into; a new session is created when empty"`
	Kind      string `json:"kind" jsonschema:"source kind: web, pdf or word"`
	Target    string `json:"target" jsonschema:"URL for web sources, local file path for pdf and word"`
}

// LoadSourceOutput is the output schema for the load_source tool.
type LoadSourceOutput struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Chunks    int    `json:"chunks"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SessionID string `json:"session_id" jsonschema:"session returned by load_source"`
	Kind      string `json:"kind,omitempty" jsonschema:"source kind to ask about (default: the loaded one)"`
	Question  string `json:"question" jsonschema:"the question to answer from the loaded document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Query   string          `json:"query"`
	Context []ContextOutput `json:"context"`
}

// ContextOutput is one retrieved passage.
type ContextOutput struct {
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// HistoryInput is the input schema for the history and reset tools.
type HistoryInput struct {
	SessionID string `json:"session_id" jsonschema:"session returned by load_source"`
	Kind      string `json:"kind,omitempty" jsonschema:"source kind (default: the loaded one, else web)"`
}

// HistoryOutput is the output schema for the history and reset tools.
type HistoryOutput struct {
	Kind  string       `json:"kind"`
	Turns []TurnOutput `json:"turns"`
}

// TurnOutput is one message in a conversation.
type TurnOutput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_source",
		Description: "Load a web page, PDF or Word document and build a searchable index for it",
	}, s.handleLoadSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the document loaded in a session",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "Show the conversation history of a session",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset",
		Description: "Clear the conversation history of a session, keeping the loaded document",
	}, s.handleReset)
}

func (s *Server) handleLoadSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadSourceInput,
) (*mcp.CallToolResult, LoadSourceOutput, error) {
	kind, err := domain.ParseSourceKind(input.Kind)
	if err != nil {
		return nil, LoadSourceOutput{}, err
	}
	src, err := normalisers.OpenSource(kind, input.Target)
	if err != nil {
		return nil, LoadSourceOutput{}, err
	}

	session, created, err := s.sessionOrNew(input.SessionID)
	if err != nil {
		return nil, LoadSourceOutput{}, err
	}

	if err := s.ports.Conversation.SelectSource(ctx, session, src); err != nil {
		if created {
			s.ports.Sessions.Delete(session.ID())
			logger.Debug("mcp: dropped session %s after failed load", session.ID())
		}
		return nil, LoadSourceOutput{}, toolError(err)
	}

	snap := session.Snapshot()
	logger.Info("mcp: session %s loaded %s (%d chunks)", session.ID(), snap.Source, snap.Chunks)
	return nil, LoadSourceOutput{
		SessionID: session.ID(),
		Kind:      kind.String(),
		Source:    snap.Source,
		Chunks:    snap.Chunks,
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	session, err := s.session(input.SessionID)
	if err != nil {
		return nil, AskOutput{}, err
	}
	kind, err := kindFor(session, input.Kind)
	if err != nil {
		return nil, AskOutput{}, err
	}

	ex, err := s.ports.Conversation.Ask(ctx, session, kind, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:  ex.Answer,
		Query:   ex.Query,
		Context: make([]ContextOutput, len(ex.Context.Chunks)),
	}
	for i, c := range ex.Context.Chunks {
		output.Context[i] = ContextOutput{Score: c.Score, Content: c.Chunk.Content}
	}
	return nil, output, nil
}

func (s *Server) handleHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	session, err := s.session(input.SessionID)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	kind, err := kindFor(session, input.Kind)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, historyOutput(session, kind), nil
}

func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	session, err := s.session(input.SessionID)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	kind, err := kindFor(session, input.Kind)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	if err := s.ports.Conversation.ResetHistory(session, kind); err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, historyOutput(session, kind), nil
}

// session looks up an existing client session.
func (s *Server) session(id string) (driving.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}
	session, ok := s.ports.Sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %q", domain.ErrNotFound, id)
	}
	return session, nil
}

// sessionOrNew returns the session for id, creating one when id is empty.
// created reports whether the session is new.
func (s *Server) sessionOrNew(id string) (session driving.Session, created bool, err error) {
	if strings.TrimSpace(id) != "" {
		session, err = s.session(id)
		return session, false, err
	}
	session = s.ports.Conversation.NewSession()
	s.ports.Sessions.Put(session.ID(), session)
	logger.Debug("mcp: created session %s", session.ID())
	return session, true, nil
}

// kindFor resolves an optional kind argument against the session.
func kindFor(session driving.Session, raw string) (domain.SourceKind, error) {
	if strings.TrimSpace(raw) != "" {
		return domain.ParseSourceKind(raw)
	}
	if active := session.Active(); active != "" {
		return active, nil
	}
	return domain.SourceKindWeb, nil
}

func historyOutput(session driving.Session, kind domain.SourceKind) HistoryOutput {
	turns := session.History(kind)
	out := HistoryOutput{Kind: kind.String(), Turns: make([]TurnOutput, len(turns))}
	for i, t := range turns {
		out.Turns[i] = TurnOutput{Role: t.Role.String(), Content: t.Content}
	}
	return out
}

// userError reports the user-facing message while keeping the cause
// available to errors.Is.
type userError struct{ err error }

func (e userError) Error() string { return domain.UserMessage(e.err) }
func (e userError) Unwrap() error { return e.err }

func toolError(err error) error {
	return userError{err: err}
}
