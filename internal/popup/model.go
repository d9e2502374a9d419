package popup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ctxmenu/internal/dispatch"
	"ctxmenu/internal/encoding"
	"ctxmenu/internal/selection"
)

type state int

const (
	stateChoose state = iota
	stateConfirm
	stateRunning
	stateFinished
)

type tickMsg time.Time

type lingerDoneMsg struct{}

// JobFactory returns the job for a batch operation.
type JobFactory func(op encoding.Operation) encoding.Job

// Options configures a popup model.
type Options struct {
	Selection    selection.Selection
	Actions      []dispatch.Action
	Bridge       *dispatch.Bridge
	Jobs         JobFactory
	PollInterval time.Duration
	Linger       time.Duration
	PreviewRunes int
}

// Model is the popup state machine.
type Model struct {
	ctx     context.Context
	opts    Options
	header  string
	state   state
	cursor  int
	percent float64

	confirmPath string
	running     *dispatch.Action
	chosen      *dispatch.Action
	outcome     *dispatch.Message
	cancelled   bool
	launchErr   error

	bar   progress.Model
	width int
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// New builds the popup model. ctx bounds any job launched from it.
func New(ctx context.Context, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	return Model{
		ctx:    ctx,
		opts:   opts,
		header: describe(opts.Selection, opts.PreviewRunes),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Chosen returns the text action picked by the user, if any.
func (m Model) Chosen() (dispatch.Action, bool) {
	if m.chosen == nil {
		return dispatch.Action{}, false
	}
	return *m.chosen, true
}

// Cancelled reports whether the user closed the popup during a batch.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Outcome returns the terminal bridge message, if the batch finished while
// the popup was open.
func (m Model) Outcome() (dispatch.Message, bool) {
	if m.outcome == nil {
		return dispatch.Message{}, false
	}
	return *m.outcome, true
}

// LaunchErr is the error from starting the selected batch, if any.
func (m Model) LaunchErr() error {
	return m.launchErr
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 10 {
			m.bar.Width = min(w, 60)
		}
		return m, nil
	case tickMsg:
		return m.drain()
	case lingerDoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" || key == "ctrl+c" {
		if m.state == stateRunning || m.state == stateConfirm {
			m.opts.Bridge.Cancel()
			m.cancelled = true
		}
		return m, tea.Quit
	}

	switch m.state {
	case stateChoose:
		return m.handleChoose(key)
	case stateConfirm:
		switch key {
		case "y", "Y":
			m.opts.Bridge.Answer(true)
			m.state = stateRunning
		case "n", "N", "enter":
			m.opts.Bridge.Answer(false)
			m.state = stateRunning
		}
		return m, nil
	case stateFinished:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleChoose(key string) (tea.Model, tea.Cmd) {
	actions := m.opts.Actions
	if len(actions) == 0 {
		if key == "enter" || key == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j", "tab":
		if m.cursor < len(actions)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m.choose(m.cursor)
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if idx := int(key[0] - '1'); idx < len(actions) {
			return m.choose(idx)
		}
	}
	return m, nil
}

func (m Model) choose(idx int) (tea.Model, tea.Cmd) {
	action := m.opts.Actions[idx]
	m.cursor = idx
	if !action.IsBatch() {
		m.chosen = &action
		return m, tea.Quit
	}
	if err := m.opts.Bridge.Launch(m.ctx, m.opts.Jobs(action.Operation), action.Files); err != nil {
		m.launchErr = err
		m.state = stateFinished
		m.outcome = &dispatch.Message{Kind: dispatch.MsgError, Reason: err.Error()}
		return m, tea.Tick(m.opts.Linger, func(time.Time) tea.Msg { return lingerDoneMsg{} })
	}
	m.running = &action
	m.state = stateRunning
	return m, m.tick()
}

func (m Model) drain() (tea.Model, tea.Cmd) {
	if m.state == stateFinished || m.state == stateChoose {
		return m, nil
	}
	for _, msg := range m.opts.Bridge.Poll() {
		switch {
		case msg.Kind == dispatch.MsgProgress:
			if msg.Percent > m.percent {
				m.percent = msg.Percent
			}
		case msg.Kind == dispatch.MsgConfirm:
			m.state = stateConfirm
			m.confirmPath = msg.Path
		case msg.Kind.Terminal():
			terminal := msg
			m.outcome = &terminal
			m.state = stateFinished
			if terminal.Kind == dispatch.MsgDone {
				m.percent = 100
			}
		}
	}
	if m.state == stateFinished {
		return m, tea.Tick(m.opts.Linger, func(time.Time) tea.Msg { return lingerDoneMsg{} })
	}
	return m, m.tick()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ctxmenu"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.header))
	b.WriteString("\n\n")

	switch m.state {
	case stateChoose:
		if len(m.opts.Actions) == 0 {
			b.WriteString(dispatch.NoContextMessage)
			b.WriteString("\n\n")
			b.WriteString(mutedStyle.Render("esc to close"))
			break
		}
		for i, action := range m.opts.Actions {
			line := fmt.Sprintf("%d. %s", i+1, action.Label)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("enter to run, esc to close"))
	case stateConfirm:
		b.WriteString(m.runningLabel())
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.percent / 100))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%s already exists. Overwrite? [y/N]", m.confirmPath)
	case stateRunning:
		b.WriteString(m.runningLabel())
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.percent / 100))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("esc to cancel"))
	case stateFinished:
		b.WriteString(m.bar.ViewAs(m.percent / 100))
		b.WriteString("\n\n")
		b.WriteString(m.finishedLine())
	}
	return panelStyle.Render(b.String())
}

func (m Model) runningLabel() string {
	if m.running == nil {
		return ""
	}
	return m.running.Label
}

func (m Model) finishedLine() string {
	if m.outcome == nil {
		return ""
	}
	switch m.outcome.Kind {
	case dispatch.MsgDone:
		return okStyle.Render("Done") + " " + mutedStyle.Render(m.outcome.Summary)
	case dispatch.MsgCancelled:
		return mutedStyle.Render("Cancelled")
	default:
		return errorStyle.Render("Error") + " " + m.outcome.Reason
	}
}

func describe(sel selection.Selection, previewRunes int) string {
	switch sel.Kind() {
	case selection.KindText:
		text, _ := sel.Text()
		return fmt.Sprintf("Text: %q", Preview(text, previewRunes))
	case selection.KindFiles:
		files, _ := sel.Files()
		if len(files) == 1 {
			return "1 file selected"
		}
		return fmt.Sprintf("%d files selected", len(files))
	default:
		return "Nothing selected"
	}
}

// Preview shortens text to at most limit runes on one line.
func Preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// Run shows the popup until it quits and returns the final model.
func Run(m Model, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, err
	}
	if fm, ok := final.(Model); ok {
		return fm, nil
	}
	return m, nil
}
