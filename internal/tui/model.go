// Package tui provides the Bubble Tea training interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/result"
	"github.com/verte-zerg/wordtally/internal/session"
	"github.com/verte-zerg/wordtally/internal/timer"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	answeredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	choiceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#C89A3A")).Bold(true)
	wordStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	panelStyle     = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

type tickMsg struct {
	seq int
}

// Model implements the Bubble Tea training UI over a session engine.
type Model struct {
	engine     *session.Engine
	sink       session.Sink
	userID     string
	difficulty model.Difficulty

	width  int
	height int

	tickSeq int
	errMsg  string
	details table.Model
}

// NewModel constructs a training UI. sink may be nil to skip record delivery.
func NewModel(engine *session.Engine, sink session.Sink, userID string, difficulty model.Difficulty) *Model {
	if difficulty == "" {
		difficulty = model.Easy
	}
	return &Model{
		engine:     engine,
		sink:       sink,
		userID:     userID,
		difficulty: difficulty,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) tick() tea.Cmd {
	seq := m.tickSeq
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		// Ticks from an earlier session are dropped so only one chain is alive.
		if msg.seq != m.tickSeq || m.engine.Status() != session.Running {
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.engine.Reset()
			return m, tea.Quit
		}
		switch m.engine.Status() {
		case session.Running:
			return m.updateRunning(msg)
		case session.Submitted:
			return m.updateSubmitted(msg)
		default:
			return m.updateIdle(msg)
		}
	}
	return m, nil
}

func (m *Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.difficulty = model.Easy
	case "2":
		m.difficulty = model.Medium
	case "3":
		m.difficulty = model.Hard
	case "enter", " ":
		return m, m.start()
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) start() tea.Cmd {
	if err := m.engine.Start(m.difficulty); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	m.tickSeq++
	return m.tick()
}

func (m *Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	index := m.engine.Current() - 1
	var err error
	switch key := msg.String(); key {
	case "0", "1", "2", "3", "4":
		err = m.engine.SelectAnswer(index, int(key[0]-'0'))
	case "backspace", "delete":
		err = m.engine.ClearAnswer(index)
	case "left", "h":
		err = m.engine.Prev()
	case "right", "l", "tab":
		err = m.engine.Next()
	case "home":
		err = m.engine.NavigateTo(1)
	case "end":
		err = m.engine.NavigateTo(model.QuestionCount)
	case "m":
		_, err = m.engine.ToggleMark(m.engine.Current())
	case "enter":
		return m, m.submit()
	case "esc":
		m.engine.Reset()
		m.errMsg = ""
		return m, nil
	}
	if err != nil {
		m.errMsg = err.Error()
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	res, err := m.engine.Submit(m.userID, m.sink)
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	m.details = buildDetailsTable(res, m.height)
	return nil
}

func (m *Model) updateSubmitted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.start()
	case "esc":
		m.engine.Reset()
		return m, nil
	case "q":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.engine.Status() {
	case session.Running:
		body = m.viewRunning()
	case session.Submitted:
		body = m.viewSubmitted()
	default:
		body = m.viewIdle()
	}
	if m.errMsg != "" {
		body += "\n\n" + errorStyle.Render(m.errMsg)
	}
	return center(body, m.width, m.height)
}

func (m *Model) viewIdle() string {
	lines := []string{titleStyle.Render("Word count training"), ""}
	for i, d := range model.Difficulties {
		label := fmt.Sprintf("%d  %s", i+1, d)
		if d == m.difficulty {
			lines = append(lines, selectedStyle.Render(" "+label+" "))
			continue
		}
		lines = append(lines, choiceStyle.Render(" "+label+" "))
	}
	lines = append(lines, "", footerStyle.Render("1/2/3: difficulty  enter: start  q: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) viewRunning() string {
	current := m.engine.Current()
	questions := m.engine.Questions()
	var onQuestion time.Duration
	if times := m.engine.QuestionTimes(); current >= 1 && current <= len(times) {
		onQuestion = times[current-1]
	}
	header := fmt.Sprintf("Question %d/%d  ·  %s  ·  %s  ·  this question %s  ·  answered %d/%d",
		current, model.QuestionCount, m.engine.Difficulty(),
		timer.Format(int64(m.engine.TotalSeconds())),
		timer.Format(int64(onQuestion/time.Second)),
		m.engine.AnsweredCount(), model.QuestionCount)

	grid := panelStyle.Render(strings.Join(gridLines(m.engine.TableWords(), gridColumns), "\n"))

	var words []string
	if current >= 1 && current <= len(questions) {
		words = questions[current-1].Words
	}
	question := wordStyle.Render(strings.Join(words, "   "))
	prompt := "How many of these words are in the table?"
	if m.engine.Marked(current) {
		prompt += "  " + answeredStyle.Render("(marked)")
	}

	nav := navStrip(navState{
		current:  current,
		answered: func(n int) bool { return m.engine.Answer(n-1) != model.Unanswered },
		marked:   m.engine.Marked,
	})
	help := footerStyle.Render("0-4: answer  backspace: clear  ←/→: move  m: mark  enter: submit  esc: quit session")

	return strings.Join([]string{
		titleStyle.Render(header),
		"",
		grid,
		"",
		prompt,
		question,
		"",
		answerChoices(m.engine.Answer(current - 1)),
		"",
		nav,
		"",
		help,
	}, "\n")
}

func (m *Model) viewSubmitted() string {
	res, ok := m.engine.Result()
	if !ok {
		return ""
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Correct", fmt.Sprintf("%d/%d", res.CorrectCount, res.TotalCount)),
		metricCard("Accuracy", result.FormatOneDecimal(res.Accuracy)+"%"),
		metricCard("Total time", timer.Format(int64(m.engine.TotalSeconds()))),
		metricCard("Per question", result.FormatOneDecimal(res.AvgTime)+"s"),
	)
	help := footerStyle.Render("↑/↓: scroll  r: train again  esc: menu  q: quit")
	tally := correctStyle.Render(fmt.Sprintf("✓ %d", res.CorrectCount)) + "  " +
		incorrectStyle.Render(fmt.Sprintf("✗ %d", res.TotalCount-res.CorrectCount))
	return strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Result  ·  %s", m.engine.Difficulty())),
		cards,
		tally,
		m.details.View(),
		"",
		help,
	}, "\n")
}

func metricCard(label, value string) string {
	return panelStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func detailRows(res model.Result) []table.Row {
	rows := make([]table.Row, 0, len(res.Details))
	for _, d := range res.Details {
		answer := "-"
		if d.UserAnswer != nil {
			answer = fmt.Sprintf("%d", *d.UserAnswer)
		}
		// Cells stay plain: the table truncates without skipping ANSI sequences.
		verdict := "✗"
		if d.IsCorrect {
			verdict = "✓"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", d.QuestionIndex+1),
			strings.Join(d.QuestionWords, " "),
			answer,
			fmt.Sprintf("%d", d.CorrectAnswer),
			verdict,
			fmt.Sprintf("%ds", d.TimeSpent),
		})
	}
	return rows
}

func buildDetailsTable(res model.Result, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Words", Width: 28},
		{Title: "Yours", Width: 5},
		{Title: "Right", Width: 5},
		{Title: "", Width: 2},
		{Title: "Time", Width: 5},
	}
	visible := model.QuestionCount
	if height > 0 {
		visible = max(3, min(model.QuestionCount, height-14))
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(detailRows(res)),
		table.WithHeight(visible),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A"))
	t.SetStyles(styles)
	return t
}
