// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docchat/internal/core/domain"
)

// SourceRequested asks the app to load a source for the session.
type SourceRequested struct {
	Source domain.Source
}

// SourceLoaded reports the outcome of a source load.
type SourceLoaded struct {
	Kind domain.SourceKind
	Name string
	Err  error
}

// QuestionAsked asks the app to answer a question against kind.
type QuestionAsked struct {
	Kind     domain.SourceKind
	Question string
}

// AnswerReceived carries the outcome of a question back to the model.
type AnswerReceived struct {
	Kind     domain.SourceKind
	Exchange *domain.Exchange
	Err      error
}

// HistoryReset is sent after a kind's history is cleared.
type HistoryReset struct {
	Kind domain.SourceKind
	Err  error
}

// KindChanged is sent when the selected source kind tab changes.
type KindChanged struct {
	Kind domain.SourceKind
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred reports an error unrelated to a load or question.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}
