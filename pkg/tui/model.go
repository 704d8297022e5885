package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwedi/logium/pkg/engine/model"
)

// EventMsg wraps one AnalysisEvent read off the driver's event channel.
// The caller is expected to pump the channel into the Bubble Tea program
// with tea.Program.Send, one EventMsg per received AnalysisEvent.
type EventMsg model.AnalysisEvent

// StreamClosedMsg signals that the driver's event channel has been
// closed (EventComplete was seen, or the producer goroutine exited).
type StreamClosedMsg struct{ Err error }

// Model is a scaled-down Bubble Tea program: a single scrolling list of
// AnalysisEvents rendered in a viewport, with a status line and a help
// bar. It reuses the teacher's Model/Update/View shape and viewport-based
// scrolling, without the teacher's tabs, sidebar, or search.
type Model struct {
	Styles  Styles
	KeyMap  KeyMap
	Help    help.Model
	Viewport viewport.Model

	width  int
	height int

	events   []model.AnalysisEvent
	cursor   int
	complete bool
	err      error

	totalLines   uint64
	totalMatches uint64
	showHelp     bool

	statusMsg string
}

// New builds a Model ready to receive EventMsg values.
func New() Model {
	vp := viewport.New(80, 20)
	return Model{
		Styles:   DefaultStyles(),
		KeyMap:   DefaultKeyMap(),
		Help:     help.New(),
		Viewport: vp,
	}
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
		m.height = msg.Height
		m.Viewport.Width = msg.Width
		m.Viewport.Height = msg.Height - 4
		m.Help.Width = msg.Width
		m.refreshViewport()
		return m, nil

	case EventMsg:
		ev := model.AnalysisEvent(msg)
		m.events = append(m.events, ev)
		if ev.Kind == model.EventComplete {
			m.complete = true
			m.totalLines = ev.TotalLines
			m.totalMatches = ev.TotalRuleMatches + ev.TotalPatternMatches
		}
		m.cursor = len(m.events) - 1
		m.refreshViewport()
		m.Viewport.GotoBottom()
		return m, nil

	case StreamClosedMsg:
		m.complete = true
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.KeyMap.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.KeyMap.Up):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, m.KeyMap.Down):
			m.moveCursor(1)
			return m, nil
		case key.Matches(msg, m.KeyMap.PageUp):
			m.moveCursor(-m.pageSize())
			return m, nil
		case key.Matches(msg, m.KeyMap.PageDown):
			m.moveCursor(m.pageSize())
			return m, nil
		case key.Matches(msg, m.KeyMap.Home):
			m.cursor = 0
			m.refreshViewport()
			return m, nil
		case key.Matches(msg, m.KeyMap.End):
			m.cursor = len(m.events) - 1
			m.refreshViewport()
			return m, nil
		case key.Matches(msg, m.KeyMap.Copy):
			m.copySelectedJSON()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) pageSize() int {
	if m.Viewport.Height <= 0 {
		return 1
	}
	return m.Viewport.Height
}

func (m *Model) moveCursor(delta int) {
	if len(m.events) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.events) {
		m.cursor = len(m.events) - 1
	}
	m.refreshViewport()
}

// copySelectedJSON copies the selected event as indented JSON holding its
// kind label and the same one-line description the list shows, mirroring
// the teacher's copyJSONToClipboard but for a single AnalysisEvent rather
// than a whole log line plus fields.
func (m *Model) copySelectedJSON() {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return
	}
	payload := eventJSON(m.events[m.cursor])
	if err := clipboard.WriteAll(payload); err != nil {
		m.statusMsg = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.statusMsg = "copied to clipboard"
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	header := fmt.Sprintf("logium tui — %d events", len(m.events))
	b.WriteString(m.Styles.Header.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	status := m.statusMsg
	if status == "" {
		if m.complete {
			status = fmt.Sprintf("done: %d lines, %d matches", m.totalLines, m.totalMatches)
		} else {
			status = "streaming..."
		}
	}
	b.WriteString(m.Styles.StatusBar.Width(m.width).Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.Help.FullHelpView(m.KeyMap.FullHelp()))
	} else {
		b.WriteString(m.Styles.HelpBar.Width(m.width).Render(m.Help.ShortHelpView(m.KeyMap.ShortHelp())))
	}

	return b.String()
}

func (m *Model) refreshViewport() {
	lines := make([]string, len(m.events))
	for i, ev := range m.events {
		lines[i] = m.renderEventLine(ev, i == m.cursor)
	}
	m.Viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) renderEventLine(ev model.AnalysisEvent, selected bool) string {
	kind, body := describeEvent(ev)
	line := fmt.Sprintf("%s %s", KindStyle(kind).Render(strings.ToUpper(kind)), body)
	if selected {
		return m.Styles.EventSelected.Render(line)
	}
	return m.Styles.EventLine.Render(line)
}

func describeEvent(ev model.AnalysisEvent) (kind, body string) {
	switch ev.Kind {
	case model.EventRuleMatch:
		rm := ev.RuleMatch
		return "rule", fmt.Sprintf("rule %d source %d: %s", rm.RuleID, rm.SourceID, rm.LogLine.Content)
	case model.EventPatternMatch:
		pm := ev.PatternMatch
		return "pattern", fmt.Sprintf("pattern %d fired at %s", pm.PatternID, pm.Timestamp.Format(timeFormat))
	case model.EventStateChange:
		sc := ev.StateChange
		return "state", fmt.Sprintf("%s %s changed", sc.SourceName, sc.StateKey)
	case model.EventProgress:
		return "progress", fmt.Sprintf("%d lines processed", ev.LinesProcessed)
	case model.EventComplete:
		return "complete", fmt.Sprintf("%d lines, %d rule matches, %d pattern matches, %d state changes",
			ev.TotalLines, ev.TotalRuleMatches, ev.TotalPatternMatches, ev.TotalStateChanges)
	case model.EventError:
		return "error", ev.Message
	default:
		return "unknown", ""
	}
}

const timeFormat = "2006-01-02 15:04:05"

func eventJSON(ev model.AnalysisEvent) string {
	kind, body := describeEvent(ev)
	out, err := json.MarshalIndent(struct {
		Kind   string `json:"kind"`
		Detail string `json:"detail"`
	}{Kind: kind, Detail: body}, "", "  ")
	if err != nil {
		return ""
	}
	return string(out) + "\n"
}
