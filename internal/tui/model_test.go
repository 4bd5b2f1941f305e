package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/verte-zerg/wordtally/internal/catalog"
	"github.com/verte-zerg/wordtally/internal/generator"
	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/session"
	"github.com/verte-zerg/wordtally/internal/timer"
)

func newTestModel(t *testing.T, poolSize int) *Model {
	t.Helper()
	words := make([]model.Word, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		words = append(words, model.Word{Text: fmt.Sprintf("w%02d", i)})
	}
	gen := generator.NewWithRand(catalog.New(words), rand.New(rand.NewSource(7)))
	idle := make(chan time.Time)
	tm := timer.New(timer.WithTickSource(func(time.Duration) (<-chan time.Time, func()) { return idle, func() {} }))
	engine := session.New(gen, session.WithTimer(tm))
	t.Cleanup(engine.Reset)
	return NewModel(engine, nil, "tester", "")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func TestIdleSelectsDifficultyAndStarts(t *testing.T) {
	m := newTestModel(t, 40)
	if m.difficulty != model.Easy {
		t.Fatalf("expected easy default, got %s", m.difficulty)
	}
	press(m, "3")
	if m.difficulty != model.Hard {
		t.Fatalf("expected hard, got %s", m.difficulty)
	}
	if !strings.Contains(m.View(), "Word count training") {
		t.Fatalf("expected idle screen")
	}
	if cmd := press(m, "enter"); cmd == nil {
		t.Fatalf("expected tick command after start")
	}
	if m.engine.Status() != session.Running || m.engine.Difficulty() != model.Hard {
		t.Fatalf("expected running hard session, got %s %s", m.engine.Status(), m.engine.Difficulty())
	}
	if !strings.Contains(m.View(), "Question 1/10") {
		t.Fatalf("expected running screen, got:\n%s", m.View())
	}
}

func TestRunningKeysDriveEngine(t *testing.T) {
	m := newTestModel(t, 40)
	press(m, "enter", "2")
	if got := m.engine.Answer(0); got != 2 {
		t.Fatalf("expected answer 2, got %d", got)
	}
	press(m, "backspace")
	if got := m.engine.Answer(0); got != model.Unanswered {
		t.Fatalf("expected cleared answer, got %d", got)
	}
	press(m, "right", "l")
	if m.engine.Current() != 3 {
		t.Fatalf("expected question 3, got %d", m.engine.Current())
	}
	press(m, "m")
	if !m.engine.Marked(3) {
		t.Fatalf("expected question 3 marked")
	}
	press(m, "end")
	if m.engine.Current() != model.QuestionCount {
		t.Fatalf("expected last question, got %d", m.engine.Current())
	}
	press(m, "left", "h", "home")
	if m.engine.Current() != 1 {
		t.Fatalf("expected first question, got %d", m.engine.Current())
	}
	press(m, "9")
	if m.engine.Answer(0) != model.Unanswered || m.errMsg != "" {
		t.Fatalf("expected unknown key to be ignored")
	}
}

func TestSubmitShowsResultAndRestarts(t *testing.T) {
	m := newTestModel(t, 40)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	press(m, "enter")
	for i, q := range m.engine.Questions() {
		if err := m.engine.NavigateTo(i + 1); err != nil {
			t.Fatalf("NavigateTo failed: %v", err)
		}
		press(m, fmt.Sprintf("%d", q.CorrectAnswer))
	}
	press(m, "enter")
	if m.engine.Status() != session.Submitted {
		t.Fatalf("expected submitted, got %s", m.engine.Status())
	}
	view := m.View()
	if !strings.Contains(view, "10/10") || !strings.Contains(view, "100.0%") {
		t.Fatalf("expected perfect result in view:\n%s", view)
	}
	if cmd := press(m, "r"); cmd == nil || m.engine.Status() != session.Running {
		t.Fatalf("expected restart from result screen")
	}
	press(m, "esc")
	if m.engine.Status() != session.Idle {
		t.Fatalf("expected idle after esc, got %s", m.engine.Status())
	}
}

func TestStaleTicksAreDropped(t *testing.T) {
	m := newTestModel(t, 40)
	press(m, "enter")
	stale := tickMsg{seq: m.tickSeq - 1}
	if _, cmd := m.Update(stale); cmd != nil {
		t.Fatalf("expected stale tick to be dropped")
	}
	if _, cmd := m.Update(tickMsg{seq: m.tickSeq}); cmd == nil {
		t.Fatalf("expected current tick to schedule the next one")
	}
	press(m, "esc")
	if _, cmd := m.Update(tickMsg{seq: m.tickSeq}); cmd != nil {
		t.Fatalf("expected ticks to stop after reset")
	}
}

func TestStartFailureIsShown(t *testing.T) {
	m := newTestModel(t, 12)
	if cmd := press(m, "enter"); cmd != nil {
		t.Fatalf("expected no tick after failed start")
	}
	if m.engine.Status() != session.Idle {
		t.Fatalf("expected idle engine")
	}
	if !strings.Contains(m.View(), "insufficient word pool") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t, 40)
	press(m, "enter")
	cmd := press(m, "ctrl+c")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.engine.Status() != session.Idle {
		t.Fatalf("expected engine reset on quit")
	}
}

func TestDetailsTableKeepsVerdictsInColour(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	right, wrong := 1, 3
	res := model.Result{
		CorrectCount: 1,
		TotalCount:   2,
		Details: []model.Detail{
			{QuestionIndex: 0, QuestionWords: []string{"a", "b"}, UserAnswer: &right, CorrectAnswer: 1, IsCorrect: true},
			{QuestionIndex: 1, QuestionWords: []string{"c", "d"}, UserAnswer: &wrong, CorrectAnswer: 0},
		},
	}
	view := buildDetailsTable(res, 0).View()
	if !strings.Contains(view, "✓") || !strings.Contains(view, "✗") {
		t.Fatalf("expected both verdict marks in table:\n%q", view)
	}
}

func TestRunningViewShowsQuestionTime(t *testing.T) {
	m := newTestModel(t, 40)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	press(m, "enter")
	if view := m.View(); !strings.Contains(view, "this question 00:00") {
		t.Fatalf("expected per-question time in view:\n%s", view)
	}
}
