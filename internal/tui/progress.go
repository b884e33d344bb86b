// Package tui renders live terminal views for mpsc commands.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/mpsc/internal/bench"
	"github.com/Iron-Ham/mpsc/internal/tui/styles"
	"github.com/Iron-Ham/mpsc/internal/util"
)

const (
	tickInterval  = 100 * time.Millisecond
	defaultWidth  = 60
	minBarWidth   = 10
	barLabelWidth = 8
)

// ProgressSource reports benchmark progress. *bench.Runner implements it.
type ProgressSource interface {
	Progress() bench.Progress
}

type tickMsg time.Time

// DoneMsg tells the model the benchmark finished.
type DoneMsg struct {
	Report *bench.Report
	Err    error
}

// BenchModel is the bubbletea model for a running benchmark.
type BenchModel struct {
	title    string
	source   ProgressSource
	spinner  spinner.Model
	progress bench.Progress
	width    int

	done      bool
	cancelled bool
	report    *bench.Report
	err       error
}

// NewBenchModel creates a model that polls source on every tick.
func NewBenchModel(title string, source ProgressSource) BenchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Primary
	return BenchModel{
		title:   title,
		source:  source,
		spinner: s,
		width:   defaultWidth,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m BenchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update implements tea.Model.
func (m BenchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.progress = m.source.Progress()
		if m.done {
			return m, nil
		}
		return m, tick()

	case DoneMsg:
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		m.progress = m.source.Progress()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m BenchModel) View() string {
	var b strings.Builder

	header := m.title
	if !m.done {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(styles.Title.Render(header))
	b.WriteString("\n")

	b.WriteString(m.bar())
	b.WriteString("\n")
	b.WriteString(m.row("received", fmt.Sprintf("%s / %s",
		util.FormatCount(m.progress.Received), util.FormatCount(m.progress.Total))))
	b.WriteString(m.row("sent", util.FormatCount(m.progress.Sent)))
	b.WriteString(m.row("elapsed", util.FormatDuration(m.progress.Elapsed)))
	if secs := m.progress.Elapsed.Seconds(); secs > 0 {
		b.WriteString(m.row("rate", util.FormatRate(float64(m.progress.Received)/secs)))
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + styles.Error.Render(util.TruncateANSI("error: "+m.err.Error(), m.width)) + "\n")
	case m.report != nil:
		b.WriteString("\n" + styles.Badge(m.report.OK()) + "\n")
	default:
		b.WriteString(styles.HelpBar.Render("q: cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m BenchModel) row(label, value string) string {
	return styles.Label.Render(label) + styles.Text.Render(value) + "\n"
}

func (m BenchModel) bar() string {
	w := m.width - barLabelWidth
	if w < minBarWidth {
		w = minBarWidth
	}
	frac := m.progress.Fraction()
	filled := int(frac * float64(w))
	if filled > w {
		filled = w
	}
	bar := styles.BarFilled.Render(strings.Repeat("█", filled)) +
		styles.BarEmpty.Render(strings.Repeat("░", w-filled))
	pct := lipgloss.NewStyle().Width(barLabelWidth).Align(lipgloss.Right).
		Render(fmt.Sprintf("%3.0f%%", frac*100))
	return bar + pct
}

// Cancelled reports whether the user quit before the run finished.
func (m BenchModel) Cancelled() bool {
	return m.cancelled && !m.done
}

// RunBench runs r under a live progress view. Quitting the view cancels the
// run; the partial report is still returned.
func RunBench(ctx context.Context, title string, r *bench.Runner, opts ...tea.ProgramOption) (*bench.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewBenchModel(title, r), opts...)

	type result struct {
		report *bench.Report
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		report, err := r.Run(ctx)
		resCh <- result{report, err}
		p.Send(DoneMsg{Report: report, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-resCh
		return nil, fmt.Errorf("progress view failed: %w", err)
	}
	if m, ok := final.(BenchModel); ok && m.Cancelled() {
		cancel()
	}
	res := <-resCh
	return res.report, res.err
}
