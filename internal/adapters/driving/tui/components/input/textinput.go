// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
)

// Mode selects what the prompt collects.
type Mode int

const (
	// ModeQuestion collects a question for the loaded document.
	ModeQuestion Mode = iota
	// ModeSource collects a path or URL to load.
	ModeSource
)

// Prompt wraps a bubbles textinput with a mode-dependent label.
type Prompt struct {
	textinput textinput.Model
	styles    *styles.Styles
	mode      Mode
	width     int
}

// NewPrompt creates a focused prompt in question mode.
func NewPrompt(s *styles.Styles) *Prompt {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 50

	p := &Prompt{textinput: ti, styles: s, width: 50}
	p.SetMode(ModeQuestion, "")
	return p
}

// Init starts the cursor blinking.
func (p *Prompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the label and input.
func (p *Prompt) View() string {
	label := "Ask: "
	if p.mode == ModeSource {
		label = "Load: "
	}
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center,
		p.styles.Title.Render(label),
		p.styles.InputField.Render(p.textinput.View()),
	)
}

// SetMode switches the prompt and clears it. placeholder overrides the
// mode's default hint when non-empty.
func (p *Prompt) SetMode(mode Mode, placeholder string) {
	p.mode = mode
	p.textinput.Reset()
	if placeholder != "" {
		p.textinput.Placeholder = placeholder
		return
	}
	switch mode {
	case ModeSource:
		p.textinput.Placeholder = "Path or URL, then enter"
	default:
		p.textinput.Placeholder = "Ask a question about the document..."
	}
}

// Mode returns the current mode.
func (p *Prompt) Mode() Mode {
	return p.mode
}

// Placeholder returns the current hint text.
func (p *Prompt) Placeholder() string {
	return p.textinput.Placeholder
}

// Value returns the current input value.
func (p *Prompt) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *Prompt) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Reset clears the input.
func (p *Prompt) Reset() {
	p.textinput.Reset()
}

// SetWidth sets the width of the input.
func (p *Prompt) SetWidth(width int) {
	p.width = width
	// Account for label and padding
	p.textinput.Width = max(width-12, 20)
}

// Width returns the current width.
func (p *Prompt) Width() int {
	return p.width
}
