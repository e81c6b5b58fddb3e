// Package chat provides the conversation view: source tabs, transcript,
// prompt and status line.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

// View is the chat view component.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	svc     driving.ConversationService
	session driving.Session
	ctx     context.Context

	kinds    []domain.SourceKind
	selected int

	transcript viewport.Model
	spinner    spinner.Model
	prompt     *input.Prompt
	status     *status.Bar

	// pending is the question shown while an answer is in flight.
	pending string
	busy    bool

	width  int
	height int
}

// NewView creates the chat view for session.
func NewView(s *styles.Styles, km *keymap.KeyMap, svc driving.ConversationService, session driving.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		svc:        svc,
		session:    session,
		ctx:        context.Background(),
		kinds:      domain.AllSourceKinds(),
		transcript: viewport.New(80, 10),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		prompt:     input.NewPrompt(s),
		status:     status.NewBar(s, km),
		width:      80,
		height:     24,
	}
	v.syncPrompt()
	v.refresh()
	return v
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	return v.prompt.Init()
}

// Kind returns the selected source kind.
func (v *View) Kind() domain.SourceKind {
	return v.kinds[v.selected]
}

// Busy reports whether a load or question is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Prompt exposes the input component.
func (v *View) Prompt() *input.Prompt {
	return v.prompt
}

// Status exposes the status bar.
func (v *View) Status() *status.Bar {
	return v.status
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.SourceLoaded:
		v.busy = false
		if msg.Err != nil {
			v.status.SetError(domain.UserMessage(msg.Err))
		} else {
			snap := v.session.Snapshot()
			v.status.Clear()
			v.status.SetSource(snap.Source, snap.Chunks)
		}
		v.syncPrompt()
		v.refresh()
		return v, nil

	case messages.AnswerReceived:
		v.busy = false
		v.pending = ""
		if msg.Err != nil {
			v.status.SetError(domain.UserMessage(msg.Err))
		} else {
			v.status.Clear()
		}
		v.refresh()
		return v, nil

	case messages.HistoryReset:
		if msg.Err != nil {
			v.status.SetError(domain.UserMessage(msg.Err))
		}
		v.refresh()
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case v.busy:
		// Ignore edits while a request is running.
		return v, nil

	case keymap.Matches(k, v.keymap.NextKind):
		v.selected = (v.selected + 1) % len(v.kinds)
		return v, v.kindChanged()

	case keymap.Matches(k, v.keymap.PrevKind):
		v.selected = (v.selected + len(v.kinds) - 1) % len(v.kinds)
		return v, v.kindChanged()

	case keymap.Matches(k, v.keymap.Load):
		v.prompt.SetMode(input.ModeSource, placeholderFor(v.Kind()))
		return v, nil

	case keymap.Matches(k, v.keymap.Back):
		if v.prompt.Mode() == input.ModeSource && v.ready() {
			v.prompt.SetMode(input.ModeQuestion, "")
		}
		return v, nil

	case keymap.Matches(k, v.keymap.Reset):
		kind := v.Kind()
		err := v.svc.ResetHistory(v.session, kind)
		return v, func() tea.Msg { return messages.HistoryReset{Kind: kind, Err: err} }

	case keymap.Matches(k, v.keymap.Submit):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *View) submit() tea.Cmd {
	text := strings.TrimSpace(v.prompt.Value())
	if text == "" {
		return nil
	}
	kind := v.Kind()

	if v.prompt.Mode() == input.ModeSource {
		src, err := normalisers.OpenSource(kind, text)
		if err != nil {
			v.status.SetError(domain.UserMessage(err))
			return nil
		}
		v.prompt.Reset()
		v.busy = true
		v.status.SetState(status.StateLoading)
		v.refresh()
		return tea.Batch(v.spinner.Tick, v.loadCmd(src))
	}

	v.prompt.Reset()
	v.busy = true
	v.pending = text
	v.status.SetState(status.StateAnswering)
	v.refresh()
	return tea.Batch(v.spinner.Tick, v.askCmd(kind, text))
}

func (v *View) loadCmd(src domain.Source) tea.Cmd {
	svc, sess, ctx := v.svc, v.session, v.ctx
	return func() tea.Msg {
		err := svc.SelectSource(ctx, sess, src)
		return messages.SourceLoaded{Kind: src.Kind, Name: src.Name, Err: err}
	}
}

func (v *View) askCmd(kind domain.SourceKind, question string) tea.Cmd {
	svc, sess, ctx := v.svc, v.session, v.ctx
	return func() tea.Msg {
		ex, err := svc.Ask(ctx, sess, kind, question)
		return messages.AnswerReceived{Kind: kind, Exchange: ex, Err: err}
	}
}

func (v *View) kindChanged() tea.Cmd {
	v.status.Clear()
	v.syncPrompt()
	v.refresh()
	kind := v.Kind()
	return func() tea.Msg { return messages.KindChanged{Kind: kind} }
}

func (v *View) ready() bool {
	return v.session.Active() == v.Kind() && v.session.State(v.Kind()) == domain.SessionIndexReady
}

// syncPrompt asks for a source until the selected kind has an index.
func (v *View) syncPrompt() {
	if v.ready() {
		if v.prompt.Mode() != input.ModeQuestion {
			v.prompt.SetMode(input.ModeQuestion, "")
		}
		return
	}
	v.prompt.SetMode(input.ModeSource, placeholderFor(v.Kind()))
}

func placeholderFor(kind domain.SourceKind) string {
	switch kind {
	case domain.SourceKindWeb:
		return "Enter a URL, then enter"
	case domain.SourceKindPDF:
		return "Path to a .pdf file, then enter"
	default:
		return "Path to a .docx file, then enter"
	}
}

// refresh re-renders the transcript for the selected kind.
func (v *View) refresh() {
	width := max(v.transcript.Width-2, 20)
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, turn := range v.session.History(v.Kind()) {
		v.writeTurn(&b, body, turn.Role, turn.Content)
	}
	if v.pending != "" {
		v.writeTurn(&b, body, domain.RoleHuman, v.pending)
	}
	v.transcript.SetContent(b.String())
	v.transcript.GotoBottom()
}

func (v *View) writeTurn(b *strings.Builder, body lipgloss.Style, role domain.Role, content string) {
	if role == domain.RoleHuman {
		b.WriteString(v.styles.Human.Render("You"))
	} else {
		b.WriteString(v.styles.Assistant.Render("Bot"))
	}
	b.WriteString("\n")
	b.WriteString(body.Render(content))
	b.WriteString("\n\n")
}

// SetDimensions lays out the view for a terminal of the given size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.status.SetWidth(width)
	v.prompt.SetWidth(width - 4)

	// tabs, prompt box, status line
	reserved := 1 + 3 + 1 + v.styles.Transcript.GetVerticalFrameSize()
	v.transcript.Width = max(width-v.styles.Transcript.GetHorizontalFrameSize(), 20)
	v.transcript.Height = max(height-reserved, 3)
	v.refresh()
}

// View renders the chat view.
func (v *View) View() string {
	tabs := make([]string, len(v.kinds))
	for i, k := range v.kinds {
		label := k.Description()
		if v.session.State(k) == domain.SessionIndexReady {
			label += " *"
		}
		if i == v.selected {
			tabs[i] = v.styles.ActiveTab.Render(label)
		} else {
			tabs[i] = v.styles.Tab.Render(label)
		}
	}

	statusLine := v.status.View()
	if v.busy {
		statusLine = v.spinner.View() + " " + statusLine
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		v.styles.Transcript.Render(v.transcript.View()),
		v.prompt.View(),
		statusLine,
	)
}
