package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexsoft/nexup/internal/config"
	"github.com/nexsoft/nexup/internal/detect"
	"github.com/nexsoft/nexup/internal/job"
	"github.com/nexsoft/nexup/internal/logbuf"
)

// uiState is the input-handling state machine.
type uiState int

const (
	stateNavigating uiState = iota
	stateEditing
	stateConfirmingQuit
)

// Messages for async updates
type logUpdatedMsg struct{}

type jobDoneMsg struct {
	outcome job.Outcome
}

// Model is the single screen of the nexup TUI: the configuration list, the
// status banner, and the scrolling log tail. It owns UI state exclusively;
// the job runner communicates through the log buffer and the done channel,
// never by touching model fields.
type Model struct {
	store  *config.Store
	runner *job.Runner
	logBuf *logbuf.Buffer

	// Item list: visible fields, then flags, then the Start action
	fields []config.FieldSpec
	flags  []config.FlagSpec

	theme   Theme
	mode    Mode
	message string
	state   uiState
	cursor  int

	editingKey string
	input      textinput.Model

	handle *job.Handle

	width  int
	height int

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates the configuration screen model.
func NewModel(store *config.Store, runner *job.Runner, logBuf *logbuf.Buffer) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		store:   store,
		runner:  runner,
		logBuf:  logBuf,
		fields:  config.VisibleFields(),
		flags:   config.Flags,
		theme:   ThemeDark,
		mode:    ModeNeutral,
		message: "Ready",
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the log-buffer watcher.
func (m Model) Init() tea.Cmd {
	return m.waitForLog()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case logUpdatedMsg:
		// Redraw happens implicitly; re-arm the watcher
		return m, m.waitForLog()

	case jobDoneMsg:
		if msg.outcome.Success() {
			m.mode = ModeOK
		} else {
			m.mode = ModeNeutral
		}
		m.message = msg.outcome.Message(m.runner.ScriptPath)
		return m, nil

	case spinner.TickMsg:
		if m.mode != ModeWorking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case stateEditing:
			return m.updateEditing(msg)
		case stateConfirmingQuit:
			return m.updateConfirmingQuit(msg)
		default:
			return m.updateNavigating(msg)
		}
	}

	return m, nil
}

// updateNavigating handles key events in normal navigation mode.
func (m Model) updateNavigating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m.quitNow()

	case key.Matches(msg, m.keys.Quit):
		if m.jobRunning() {
			m.state = stateConfirmingQuit
			return m, nil
		}
		return m.quitNow()

	case key.Matches(msg, m.keys.Theme):
		if m.theme == ThemeDark {
			m.theme = ThemeLight
		} else {
			m.theme = ThemeDark
		}
		return m, nil

	case key.Matches(msg, m.keys.Start):
		return m.tryStart()

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		if m.cursor < 0 {
			m.cursor = m.itemCount() - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		if m.cursor >= m.itemCount() {
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		// Toggles apply to flag items only; fields and Start ignore them
		if i, ok := m.flagIndex(m.cursor); ok {
			m.store.ToggleFlag(m.flags[i].Key)
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if m.cursor == m.startIndex() {
			return m.tryStart()
		}
		if m.cursor < len(m.fields) {
			return m.beginEdit(m.fields[m.cursor].Key, m.store.Get(m.fields[m.cursor].Key))
		}
		return m, nil
	}

	return m, nil
}

// updateEditing handles key events while the edit popup is open.
func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Discard the edit
		m.state = stateNavigating
		m.input.Blur()
		return m, nil

	case "enter":
		// Commit the buffer into the focused field
		m.store.Set(m.editingKey, m.input.Value())
		m.state = stateNavigating
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateConfirmingQuit handles the quit-while-running confirmation. Only an
// explicit 'y' confirms; everything else cancels.
func (m Model) updateConfirmingQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m.quitNow()
	default:
		m.state = stateNavigating
		return m, nil
	}
}

// quitNow terminates the UI loop, killing a still-running child first so a
// half-finished updater is never silently abandoned.
func (m Model) quitNow() (tea.Model, tea.Cmd) {
	if m.jobRunning() {
		m.handle.Kill()
	}
	return m, tea.Quit
}

// tryStart validates and launches a job. A live job suppresses the start; a
// missing serial number routes the operator straight to the field.
func (m Model) tryStart() (tea.Model, tea.Cmd) {
	if m.jobRunning() {
		m.message = "A job is already running."
		return m, nil
	}

	if m.store.Get(config.KeySerialNumber) == "" {
		return m.routeToSerialNumber()
	}

	h, err := m.runner.Start(m.store)
	if err != nil {
		if errors.Is(err, job.ErrSerialNumberRequired) {
			return m.routeToSerialNumber()
		}
		m.message = err.Error()
		return m, nil
	}

	m.handle = h
	m.mode = ModeWorking
	m.message = "Running…"
	return m, tea.Batch(m.spinner.Tick, waitForDone(h))
}

// routeToSerialNumber focuses the mandatory field and opens the editor with
// a freshly detected best-guess prefill.
func (m Model) routeToSerialNumber() (tea.Model, tea.Cmd) {
	m.message = "Product Serial Number is required."
	for i, f := range m.fields {
		if f.Key == config.KeySerialNumber {
			m.cursor = i
			break
		}
	}
	guess, _ := detect.SerialNumber()
	return m.beginEdit(config.KeySerialNumber, guess)
}

// beginEdit opens the edit popup for a field with the given initial buffer.
func (m Model) beginEdit(key, initial string) (tea.Model, tea.Cmd) {
	m.editingKey = key
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
	m.state = stateEditing
	return m, textinput.Blink
}

// jobRunning is the non-blocking liveness poll used for re-entrancy
// guarding and quit confirmation.
func (m Model) jobRunning() bool {
	return m.handle != nil && m.handle.Running()
}

func (m Model) itemCount() int {
	return len(m.fields) + len(m.flags) + 1
}

func (m Model) startIndex() int {
	return len(m.fields) + len(m.flags)
}

// flagIndex maps a cursor position to an index into the flag table.
func (m Model) flagIndex(cursor int) (int, bool) {
	i := cursor - len(m.fields)
	if i >= 0 && i < len(m.flags) {
		return i, true
	}
	return 0, false
}

// waitForLog wakes the event loop when the log buffer grows.
func (m Model) waitForLog() tea.Cmd {
	buf := m.logBuf
	return func() tea.Msg {
		<-buf.Wait()
		return logUpdatedMsg{}
	}
}

// waitForDone delivers the job's terminal outcome into the event loop.
func waitForDone(h *job.Handle) tea.Cmd {
	return func() tea.Msg {
		return jobDoneMsg{outcome: <-h.Done()}
	}
}
