// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent status bar (microphone state plus a
// transient success indicator) and listens for the push-to-talk key. All
// application output is printed above the rendered area via
// Program.Println / Printf, so concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/memorae-app/memorae/internal/domain"
)

// How long the success indicator stays in the bar.
const successVisible = 3 * time.Second

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	recordingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	processingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	// ── Output styles (soft palette) ──

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Speech — soft sky blue for what the assistant says.
	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Primary text — light zinc.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors.
	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))
)

// ── UI ───────────────────────────────────────────────────────────

// Compile-time interface check.
var _ domain.StatusSink = (*UI)(nil)

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely call
// the print helpers, [UI.SetStatus], [UI.ShowSuccess], and read from
// [UI.ToggleChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program  *tea.Program
	toggleCh chan struct{}
	readyCh  chan struct{}
	quitCh   chan struct{}
	done     atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI() *UI {
	return &UI{
		toggleCh: make(chan struct{}, 4),
		readyCh:  make(chan struct{}),
		quitCh:   make(chan struct{}),
	}
}

// Println prints a line above the status bar. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// ToggleChan delivers one value per press of the push-to-talk key.
func (u *UI) ToggleChan() <-chan struct{} { return u.toggleCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintSpeech prints a line the assistant is speaking.
func (u *UI) PrintSpeech(text string) {
	u.Println(speechStyle.Render("  " + text))
}

// PrintTranscript echoes a recognized utterance into the scrollback.
func (u *UI) PrintTranscript(text string) {
	u.Println(secondaryStyle.Render("[voz] ") + primaryStyle.Render(text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentStyle.Render("  " + text))
}

// ── StatusSink ───────────────────────────────────────────────────

// SetStatus updates the microphone readout in the status bar.
func (u *UI) SetStatus(s domain.Status) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(statusMsg(s))
	}
}

// ShowSuccess flashes a success indicator in the bar and echoes it into
// the scrollback so it survives the timeout.
func (u *UI) ShowSuccess(message string) {
	u.Println(successStyle.Render("  ✓ " + message))
	if u.program != nil && !u.done.Load() {
		u.program.Send(successMsg(message))
	}
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(processingStyle),
	)
	m := model{
		readyCh:  u.readyCh,
		toggleCh: u.toggleCh,
		spin:     sp,
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	readyCh  chan struct{}
	toggleCh chan<- struct{}
	spin     spinner.Model
	status   domain.Status
	success  string
	width    int
}

// Messages.
type statusMsg domain.Status
type successMsg string
type successGoneMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		signalReady(m.readyCh),
		m.spin.Tick,
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC, msg.String() == "q":
			return m, tea.Quit
		case msg.Type == tea.KeySpace, msg.Type == tea.KeyEnter:
			// Non-blocking: a wedged consumer must not freeze the UI.
			select {
			case m.toggleCh <- struct{}{}:
			default:
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case statusMsg:
		m.status = domain.Status(msg)
		return m, nil

	case successMsg:
		m.success = string(msg)
		return m, tea.Tick(successVisible, func(time.Time) tea.Msg {
			return successGoneMsg{}
		})

	case successGoneMsg:
		m.success = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteByte('\n')
	b.WriteString(m.renderBar())
	return b.String()
}

func (m model) renderBar() string {
	var status string
	switch m.status {
	case domain.StatusRecording:
		status = recordingStyle.Render("🔴 gravando")
	case domain.StatusProcessing:
		status = m.spin.View() + processingStyle.Render("processando")
	default:
		status = idleStyle.Render("🎤 pronto")
	}

	parts := []string{status}
	if m.success != "" {
		parts = append(parts, successStyle.Render("✓ "+m.success))
	}
	parts = append(parts, secondaryStyle.Render("espaço: falar · q: sair"))

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}
