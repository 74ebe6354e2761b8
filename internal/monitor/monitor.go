// Package monitor implements the live terminal UI using BubbleTea. The
// readout and the charts refresh on independent cadences: numbers update
// fast enough to feel live, sparklines redraw at a slower rate since a
// chart column only changes once per acquisition cycle anyway.
package monitor

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twentefluids/dodecalog/internal/chart"
	"github.com/twentefluids/dodecalog/internal/history"
	"github.com/twentefluids/dodecalog/internal/recorder"
	"github.com/twentefluids/dodecalog/internal/sample"
)

// staleAfter marks the readout as stale when no fresh sample arrived
// for a few acquisition cycles.
const staleAfter = 3 * time.Second

// row describes how one history channel appears in the readout.
type row struct {
	channel string
	label   string
	unit    string
	format  string
}

var rows = []row{
	{history.ChanDSTemp, "DS18B20 temp", "°C", "%6.1f"},
	{history.ChanBMETemp, "BME280 temp", "°C", "%6.1f"},
	{history.ChanBMEHumi, "BME280 humi", "pct", "%6.1f"},
	{history.ChanBMEPres, "BME280 pres", "mbar", "%6.1f"},
	{history.ChanSetpoint, "Julabo setp", "°C", "%6.2f"},
	{history.ChanBath, "Julabo bath", "°C", "%6.2f"},
}

func channelValue(s sample.Sample, channel string) float64 {
	switch channel {
	case history.ChanDSTemp:
		return s.DSTemp
	case history.ChanBMETemp:
		return s.BMETemp
	case history.ChanBMEHumi:
		return s.BMEHumi
	case history.ChanBMEPres:
		return s.BMEPres
	case history.ChanSetpoint:
		return s.Setpoint
	case history.ChanBath:
		return s.BathTemp
	}

	return 0
}

type (
	readoutTickMsg time.Time
	chartTickMsg   time.Time
)

// Config wires the monitor to the running pipeline.
type Config struct {
	State       *sample.StateStore
	History     *history.Store
	Recorder    *recorder.Recorder
	Lost        <-chan struct{}
	LogDir      string
	ReadoutTick time.Duration
	ChartTick   time.Duration
}

// Model is the BubbleTea model for the live monitor.
type Model struct {
	cfg Config

	state      sample.State
	charts     map[string][]history.Point
	width      int
	height     int
	startTime  time.Time
	lastChange time.Time
	connLost   bool
	err        error
}

// New creates the initial model.
func New(cfg Config) Model {
	now := time.Now()

	return Model{
		cfg:        cfg,
		charts:     make(map[string][]history.Point),
		startTime:  now,
		lastChange: now,
	}
}

func readoutTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return readoutTickMsg(t) })
}

func chartTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return chartTickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(readoutTick(m.cfg.ReadoutTick), chartTick(m.cfg.ChartTick))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m = m.toggleRecording()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case readoutTickMsg:
		prev := m.state.Updates
		m.state = m.cfg.State.Load()
		if m.state.Updates != prev {
			m.lastChange = time.Time(msg)
		}

		select {
		case <-m.cfg.Lost:
			m.connLost = true
		default:
		}

		return m, readoutTick(m.cfg.ReadoutTick)

	case chartTickMsg:
		for _, r := range rows {
			if buf := m.cfg.History.Get(r.channel); buf != nil {
				m.charts[r.channel] = buf.Snapshot()
			}
		}

		return m, chartTick(m.cfg.ChartTick)
	}

	return m, nil
}

func (m Model) toggleRecording() Model {
	if m.cfg.Recorder.Recording() {
		if err := m.cfg.Recorder.Stop(); err != nil {
			m.err = err
		}

		return m
	}

	path := filepath.Join(m.cfg.LogDir, recorder.Filename(time.Now()))
	if err := m.cfg.Recorder.Start(path); err != nil {
		m.err = err
	} else {
		m.err = nil
	}

	return m
}

// ── Palette ──────────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorValue    = lipgloss.Color("250")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorRec      = lipgloss.Color("196")
	colorLost     = lipgloss.Color("196")
	colorStale    = lipgloss.Color("243")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 48 {
		contentWidth = 48
	}

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.connLost {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorLost).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render("CONNECTION LOST: check the cable and restart"))
	}

	if m.err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorRec).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.err)))
	}

	if m.state.Updates == 0 {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for the first sample..."))
	} else {
		sections = append(sections, m.renderPanel(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("DODECAHEDRON LOGGER")

	var statusParts []string

	statusParts = append(statusParts, lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime)))))

	// The rate needs a full sliding window of accepted polls before it
	// means anything.
	if m.state.Updates > 0 && !math.IsNaN(m.state.RateHz) {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorDim).
			Render(fmt.Sprintf("%.2f Hz", m.state.RateHz)))
	}

	if m.cfg.Recorder.Recording() {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorRec).
			Bold(true).
			Render("REC "+m.cfg.Recorder.PrettyElapsed()))
	}

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderPanel(totalWidth int) string {
	labelW := 14
	valueW := 12

	chartWidth := totalWidth - labelW - valueW - 24
	if chartWidth < 15 {
		chartWidth = 15
	}
	if chartWidth > 140 {
		chartWidth = 140
	}

	stale := time.Since(m.lastChange) > staleAfter

	labelStyle := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW)
	valueStyle := lipgloss.NewStyle().Foreground(colorValue).Width(valueW).Align(lipgloss.Right)
	if stale {
		valueStyle = valueStyle.Foreground(colorStale)
	}

	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var lines []string

	if stale {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(colorStale).
			Render(fmt.Sprintf("stale: last sample %s ago", fmtDuration(time.Since(m.lastChange)))))
	}

	for _, r := range rows {
		value := valueStyle.Render(chart.Value(channelValue(m.state.Sample, r.channel), r.format, r.unit))

		pts := m.charts[r.channel]
		lo, hi := chart.Range(pts)
		spark := chart.Sparkline(pts, chartWidth, lo, hi)
		axis := chart.Axis(lo, hi, r.unit)

		lines = append(lines, labelStyle.Render(r.label)+" "+value+" "+frameL+spark+frameR+" "+axis)
	}

	panel := lipgloss.JoinVertical(lipgloss.Left, lines...)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(panel)
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	keys := dimS.Render("r") + keyS.Render(":record") +
		dimS.Render("  q") + keyS.Render(":quit")

	var status string
	if m.cfg.Recorder.Recording() {
		status = dimS.Render("writing ") + keyS.Render(m.cfg.Recorder.Path())
	} else {
		status = dimS.Render("idle")
	}

	gap := width - lipgloss.Width(status) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(status + strings.Repeat(" ", gap) + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	min := d / time.Minute
	sec := (d - min*time.Minute) / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, min, sec)
	}

	return fmt.Sprintf("%dm%02ds", min, sec)
}
