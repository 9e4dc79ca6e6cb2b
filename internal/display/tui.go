package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hervehildenbrand/mtuprobe/internal/bisect"
	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("240"))

	acceptedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	rejectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	windowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Padding(0, 1)
)

const (
	barWidth   = 50
	maxHistory = 15
)

// ProgressMsg is sent before a size is probed.
type ProgressMsg struct {
	Size int
}

// ProbeMsg is sent after a size has been probed.
type ProbeMsg struct {
	Record mtu.ProbeRecord
}

// DoneMsg is sent when the discovery finishes, successfully or not.
type DoneMsg struct {
	Result *mtu.Result
	Err    error
}

// DiscoverFunc runs a discovery, reporting each size before and after it is
// probed.
type DiscoverFunc func(ctx context.Context, progress mtu.ProgressFunc, probe mtu.ProbeCallback) (*mtu.Result, error)

// TUIModel is the Bubbletea model for the discovery view.
type TUIModel struct {
	mu      sync.RWMutex
	target  string
	maxSize int

	// low is the largest size known to pass, high the smallest known to fail.
	low  int
	high int

	current  int
	probes   []mtu.ProbeRecord
	complete bool
	result   *mtu.Result
	err      error

	cancel    context.CancelFunc
	spinner   spinner.Model
	width     int
	startTime time.Time
}

// NewTUIModel creates a new TUI model.
func NewTUIModel(target string, maxSize int) *TUIModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &TUIModel{
		target:    target,
		maxSize:   maxSize,
		low:       1,
		high:      maxSize,
		spinner:   s,
		startTime: time.Now(),
	}
}

// SetProgress records the size currently being probed.
func (m *TUIModel) SetProgress(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = size
}

// AddProbe records a finished probe and narrows the window.
func (m *TUIModel) AddProbe(rec mtu.ProbeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, rec)
	if rec.Accepted {
		m.low = max(m.low, rec.Size)
	} else {
		m.high = min(m.high, rec.Size)
	}
}

// SetComplete marks the discovery as finished.
func (m *TUIModel) SetComplete(res *mtu.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.complete = true
	m.result = res
	m.err = err
}

// Window returns the current search bounds in payload bytes.
func (m *TUIModel) Window() (low, high int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.low, m.high
}

// Init implements tea.Model
func (m *TUIModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ProgressMsg:
		m.SetProgress(msg.Size)

	case ProbeMsg:
		m.AddProbe(msg.Record)

	case DoneMsg:
		m.SetComplete(msg.Result, msg.Err)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m *TUIModel) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("mtuprobe → %s", m.target)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("Window: %d - %d bytes", m.low, m.high)))
	b.WriteString("\n")
	b.WriteString(m.renderWindowBar())
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-10s %-10s", "Size", "Result", "Time")))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 30))
	b.WriteString("\n")
	for _, rec := range m.recentProbes() {
		b.WriteString(formatProbeRow(rec))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	if m.complete {
		if m.err != nil {
			b.WriteString(rejectedStyle.Render("✗ " + m.err.Error()))
		} else if m.result != nil {
			b.WriteString(acceptedStyle.Render(fmt.Sprintf("✓ MTU %d", m.result.MTU)))
		}
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" Testing packet size %d... Press 'q' to cancel", m.current))
	}

	return b.String()
}

// recentProbes returns the tail of the probe history.
func (m *TUIModel) recentProbes() []mtu.ProbeRecord {
	if len(m.probes) <= maxHistory {
		return m.probes
	}
	return m.probes[len(m.probes)-maxHistory:]
}

// formatProbeRow formats a single probe row
func formatProbeRow(rec mtu.ProbeRecord) string {
	size := fmt.Sprintf("%-8d ", rec.Size)
	elapsed := rec.Duration.Round(time.Millisecond).String()
	if rec.Accepted {
		return size + acceptedStyle.Render(fmt.Sprintf("%-10s", "ok")) + " " + elapsed
	}
	return size + rejectedStyle.Render(fmt.Sprintf("%-10s", "too big")) + " " + elapsed
}

// renderWindowBar draws [1, maxSize] with the remaining window highlighted.
func (m *TUIModel) renderWindowBar() string {
	if m.maxSize <= 1 {
		return windowStyle.Render(strings.Repeat("█", barWidth))
	}

	scale := func(size int) int {
		pos := (size - 1) * (barWidth - 1) / (m.maxSize - 1)
		return min(max(pos, 0), barWidth-1)
	}
	lo, hi := scale(m.low), scale(m.high)

	var b strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i < lo:
			b.WriteString(acceptedStyle.Render("▁"))
		case i > hi:
			b.WriteString(rejectedStyle.Render("▁"))
		default:
			b.WriteString(windowStyle.Render("█"))
		}
	}
	return b.String()
}

// renderStatusBar renders the status bar
func (m *TUIModel) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("Probes: %d/%d", len(m.probes), bisect.MaxSteps(m.maxSize)),
		fmt.Sprintf("Max: %d", m.maxSize),
	}

	elapsed := time.Since(m.startTime).Round(time.Millisecond)
	parts = append(parts, fmt.Sprintf("Time: %v", elapsed))

	return statusStyle.Render(strings.Join(parts, " │ "))
}

// RunTUI runs discover in the background while rendering its progress to
// out. Quitting the view cancels the discovery.
func RunTUI(ctx context.Context, out io.Writer, target string, maxSize int, discover DiscoverFunc) (*mtu.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewTUIModel(target, maxSize)
	model.cancel = cancel

	p := tea.NewProgram(model, tea.WithOutput(out))

	type outcome struct {
		res *mtu.Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := discover(ctx,
			func(size int) { p.Send(ProgressMsg{Size: size}) },
			func(rec mtu.ProbeRecord) { p.Send(ProbeMsg{Record: rec}) },
		)
		done <- outcome{res: res, err: err}
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("run TUI: %w", err)
	}

	// No-op unless the view was quit before the discovery finished.
	cancel()
	o := <-done
	return o.res, o.err
}
