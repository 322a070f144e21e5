// Package tui presents a deck in the terminal. Navigation and exports go
// through the same Presentation a browser page would use, so the stage
// behind it (usually a headless browser) stays in sync.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	slidedeck "github.com/alnah/go-slidedeck"
)

// tickInterval is how often progress labels are refreshed during a job.
const tickInterval = 100 * time.Millisecond

// AlertBox is a Notifier that keeps the last alert for the UI to show.
type AlertBox struct {
	mu  sync.Mutex
	msg string
}

// Alert stores message.
func (b *AlertBox) Alert(message string) {
	b.mu.Lock()
	b.msg = message
	b.mu.Unlock()
}

// Take returns the pending alert and clears it.
func (b *AlertBox) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := b.msg
	b.msg = ""
	return msg
}

type exportDoneMsg struct {
	res *slidedeck.ExportResult
	err error
}

type tickMsg struct{}

// Config wires a Model.
type Config struct {
	Title      string
	Slides     []slidedeck.SlideText
	Presenter  *slidedeck.Presentation
	Exporter   *slidedeck.Exporter
	Assemblers []slidedeck.Assembler
	Sink       slidedeck.Sink
	Alerts     *AlertBox
	Styles     Styles
}

// Model is the bubbletea model of a running presentation.
type Model struct {
	ctx        context.Context
	cfg        Config
	assemblers map[slidedeck.ExportKind]slidedeck.Assembler

	width     int
	exporting bool
	trigger   slidedeck.ControlID
	status    string
	alert     string
}

// New creates a Model. ctx bounds stage calls and export jobs.
func New(ctx context.Context, cfg Config) Model {
	if cfg.Alerts == nil {
		cfg.Alerts = &AlertBox{}
	}
	m := Model{
		ctx:        ctx,
		cfg:        cfg,
		assemblers: make(map[slidedeck.ExportKind]slidedeck.Assembler),
		width:      80,
	}
	for _, a := range cfg.Assemblers {
		m.assemblers[a.Kind()] = a
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if m.exporting {
			return m, tick()
		}
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.alert = m.cfg.Alerts.Take()
			if m.alert == "" {
				m.alert = msg.err.Error()
			}
			m.status = ""
			return m, nil
		}
		m.status = fmt.Sprintf("saved %s (%d pages)", msg.res.Filename, msg.res.Pages)
		// Redraw once the success label has reverted.
		return m, tea.Tick(slidedeck.DefaultSuccessLinger+tickInterval, func(time.Time) tea.Msg { return tickMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.alert != "" {
		// Any key dismisses the alert.
		m.alert = ""
		return m, nil
	}

	switch key {
	case "q", "esc":
		if m.exporting {
			m.status = "export running, wait for it to finish"
			return m, nil
		}
		return m, tea.Quit
	case "p":
		return m.startExport(slidedeck.KindPDF)
	case "x":
		return m.startExport(slidedeck.KindPPTX)
	case "home", "g":
		m.navigate(func(p *slidedeck.Presentation) (int, error) { return p.Show(m.ctx, 0) })
		return m, nil
	case "end", "G":
		m.navigate(func(p *slidedeck.Presentation) (int, error) { return p.Show(m.ctx, p.Len()-1) })
		return m, nil
	}

	if _, ok := slidedeck.KeyDelta(key); ok {
		m.navigate(func(p *slidedeck.Presentation) (int, error) { return p.HandleKey(m.ctx, key) })
	}
	return m, nil
}

func (m *Model) navigate(fn func(*slidedeck.Presentation) (int, error)) {
	if _, err := fn(m.cfg.Presenter); err != nil {
		if errors.Is(err, slidedeck.ErrExportRunning) {
			m.status = "navigation is disabled during export"
			return
		}
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m Model) startExport(kind slidedeck.ExportKind) (tea.Model, tea.Cmd) {
	a, ok := m.assemblers[kind]
	if !ok || m.cfg.Exporter == nil {
		m.status = fmt.Sprintf("%s export is not available", strings.ToUpper(string(kind)))
		return m, nil
	}
	if m.exporting {
		m.status = slidedeck.ErrExportRunning.Error()
		return m, nil
	}
	m.exporting = true
	m.status = ""
	if kind == slidedeck.KindPPTX {
		m.trigger = slidedeck.ControlPPTX
	} else {
		m.trigger = slidedeck.ControlPDF
	}

	ctx, p, exp, sink := m.ctx, m.cfg.Presenter, m.cfg.Exporter, m.cfg.Sink
	run := func() tea.Msg {
		res, err := exp.Export(ctx, p, a, sink)
		return exportDoneMsg{res: res, err: err}
	}
	return m, tea.Batch(run, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// View implements tea.Model.
func (m Model) View() string {
	s := m.cfg.Styles
	p := m.cfg.Presenter
	cur, n := p.Current(), p.Len()

	var b strings.Builder
	b.WriteString(s.Header.Render(m.cfg.Title))
	b.WriteString("\n\n")

	if cur < len(m.cfg.Slides) {
		b.WriteString(m.renderSlide(m.cfg.Slides[cur]))
		b.WriteString("\n")
	}
	b.WriteString(s.Number.Render(fmt.Sprintf("%d / %d", cur+1, n)))
	b.WriteString("\n\n")

	if m.exporting {
		b.WriteString(s.Status.Render(p.Control(m.trigger).Label))
	} else {
		b.WriteString(m.renderControls())
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(s.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(s.Number.Render("←/→ navigate · p PDF · x PPTX · q quit"))

	if m.alert != "" {
		return lipgloss.JoinVertical(lipgloss.Left, b.String(), "", s.Alert.Render(m.alert))
	}
	return b.String()
}

func (m Model) renderSlide(st slidedeck.SlideText) string {
	s := m.cfg.Styles
	inner := max(m.width-12, 20)

	parts := make([]string, 0, len(st.Lines)+1)
	if st.Title != "" {
		parts = append(parts, s.Title.Render(st.Title))
	}
	for _, l := range st.Lines {
		parts = append(parts, s.Line.Render(l))
	}
	return s.Slide.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderControls() string {
	s := m.cfg.Styles
	var buttons []string
	for _, c := range m.cfg.Presenter.Controls() {
		if c.Hidden {
			continue
		}
		if c.ID == slidedeck.ControlPDF || c.ID == slidedeck.ControlPPTX {
			if _, ok := m.assemblers[kindFor(c.ID)]; !ok {
				continue
			}
		}
		style := s.Button
		if c.Disabled {
			style = s.Disabled
		}
		buttons = append(buttons, style.Render(c.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}

func kindFor(id slidedeck.ControlID) slidedeck.ExportKind {
	if id == slidedeck.ControlPPTX {
		return slidedeck.KindPPTX
	}
	return slidedeck.KindPDF
}
