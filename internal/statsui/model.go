// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/result"
	"github.com/verte-zerg/wordtally/internal/stats"
	"github.com/verte-zerg/wordtally/internal/store"
	"github.com/verte-zerg/wordtally/internal/timer"
)

const (
	tabOverview = iota
	tabRecords
	tabDifficulty
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string
	notice string

	tabs      []string
	activeTab int
	viewports []viewport.Model

	records      []model.RecordSummary
	recordsTable table.Model

	detailMode bool
	detail     viewport.Model

	userMode  bool
	userInput textinput.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Records", "Difficulty"},
	}
	if m.cfg.UserID == "" {
		m.cfg.UserID = model.DefaultUserID
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.detail = viewport.New(0, 0)
	m.userInput = textinput.New()
	m.userInput.Prompt = "User: "
	m.userInput.Placeholder = "empty for the default user"
	m.userInput.Cursor.SetMode(cursor.CursorBlink)
	m.recordsTable = table.New(table.WithColumns(recordColumns()), table.WithHeight(1))
	m.recordsTable.SetStyles(recordTableStyles())
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.userMode {
			return m.updateUserInput(msg)
		}
		if m.detailMode {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/", "u":
			m.userMode = true
			m.userInput.SetValue(m.cfg.UserID)
			return m, m.userInput.Focus()
		}
		if m.activeTab == tabRecords {
			return m.updateRecords(msg)
		}
		vp := m.viewports[m.activeTab]
		var cmd tea.Cmd
		vp, cmd = vp.Update(msg)
		m.viewports[m.activeTab] = vp
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateRecords(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.openDetail()
		return m, nil
	case "d":
		m.deleteSelected()
		return m, nil
	}
	var cmd tea.Cmd
	m.recordsTable, cmd = m.recordsTable.Update(msg)
	return m, cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.detailMode = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) updateUserInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.userMode = false
		m.userInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.userMode = false
		m.userInput.Blur()
		m.cfg.UserID = strings.TrimSpace(m.userInput.Value())
		if m.cfg.UserID == "" {
			m.cfg.UserID = model.DefaultUserID
		}
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.userInput, cmd = m.userInput.Update(msg)
	return m, cmd
}

func (m *Model) selectedRecord() (model.RecordSummary, bool) {
	idx := m.recordsTable.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return model.RecordSummary{}, false
	}
	return m.records[idx], true
}

func (m *Model) openDetail() {
	sum, ok := m.selectedRecord()
	if !ok {
		return
	}
	rec, err := m.store.GetRecord(context.Background(), sum.ID)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	var buf bytes.Buffer
	if err := stats.RenderRecord(&buf, rec); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.detail.SetContent(strings.TrimRight(buf.String(), "\n"))
	m.detail.GotoTop()
	m.detailMode = true
}

func (m *Model) deleteSelected() {
	sum, ok := m.selectedRecord()
	if !ok {
		return
	}
	if err := m.store.DeleteRecord(context.Background(), sum.ID); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.notice = fmt.Sprintf("Deleted record %s", shortID(sum.ID))
	m.refreshReport()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.notice != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.detail.Width = m.width
	m.detail.Height = bodyHeight
	m.recordsTable.SetWidth(m.width)
	m.recordsTable.SetHeight(maxInt(1, bodyHeight-1))
	m.userInput.Width = maxInt(10, m.width-lipgloss.Width(m.userInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabRecords {
		m.recordsTable.Focus()
	} else {
		m.recordsTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: user=%s  since=%s  last=%s  window=%d", m.cfg.UserID, since, last, m.cfg.CurveWindow)
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	var help string
	switch {
	case m.userMode:
		help = "enter: apply  esc: cancel"
	case m.detailMode:
		help = "Scroll: up/down  Close: esc"
	case m.activeTab == tabRecords:
		help = "Nav: left/right  Select: up/down  Detail: enter  Delete: d  User: /  Quit: q"
	default:
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  User: /  Quit: q"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	} else if m.notice != "" {
		out += "\n" + headerStyle.Render(m.notice)
	}
	return out
}

func (m *Model) renderBody() string {
	switch {
	case m.userMode:
		return "Filter by user (enter to apply, esc to cancel)\n" + m.userInput.View()
	case m.detailMode:
		return m.detail.View()
	case m.activeTab == tabRecords:
		if len(m.records) == 0 {
			return "No training records found."
		}
		return tableMutedStyle.Render(m.recordsTable.View())
	default:
		return m.viewports[m.activeTab].View()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.records = append([]model.RecordSummary(nil), report.Records...)
	// Newest first in the table.
	for i, j := 0, len(m.records)-1; i < j; i, j = i+1, j-1 {
		m.records[i], m.records[j] = m.records[j], m.records[i]
	}
	m.recordsTable.SetRows(recordRows(m.records))
	if m.recordsTable.Cursor() >= len(m.records) {
		m.recordsTable.SetCursor(maxInt(0, len(m.records)-1))
	}
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabDifficulty].SetContent(renderDifficulty(m.report.Stats.ByDifficulty))
}

func renderOverview(report stats.Report, window, width int) string {
	st := report.Stats
	if st.Overall.Sessions == 0 {
		return "No training records found."
	}
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", st.Overall.Sessions)),
		metricCard("Avg accuracy", stats.Percent(st.Overall.AvgAccuracy)),
		metricCard("Best accuracy", stats.Percent(st.Overall.BestAccuracy)),
		metricCard("Avg time", stats.Seconds(st.Overall.AvgTotalTime)),
		metricCard("Best time", timer.Format(int64(st.Overall.BestTime))),
		metricCard("Per question", result.FormatOneDecimal(st.Overall.AvgQuestionTime)+"s"),
		metricCard("Last 7 days", fmt.Sprintf("%d · %s", st.RecentWeek.Sessions, stats.Percent(st.RecentWeek.AvgAccuracy))),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:4]...)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[4:]...)
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Records, window, width, true); err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to render curves: %v", err)
	}
	if err := stats.RenderWeakCounts(&buf, stats.WeakCounts(report.Window)); err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to render counts: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func renderDifficulty(rows []model.DifficultyStats) string {
	if len(rows) == 0 {
		return "No training records found."
	}
	cards := make([]string, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, metricCard(string(r.Difficulty), fmt.Sprintf("%d sessions\n%s", r.Count, stats.Percent(r.AvgAccuracy))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func recordColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Date", Width: 16},
		{Title: "Difficulty", Width: 10},
		{Title: "Correct", Width: 7},
		{Title: "Accuracy", Width: 8},
		{Title: "Time", Width: 6},
	}
}

func recordRows(records []model.RecordSummary) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(r.Difficulty),
			fmt.Sprintf("%d/%d", r.CorrectCount, model.QuestionCount),
			stats.Percent(r.Accuracy),
			timer.Format(int64(r.TotalTime)),
		})
	}
	return rows
}

func recordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
