package statsui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

func saveRecord(t *testing.T, st *store.Store, id, user string, correct int, at time.Time) {
	t.Helper()
	details := make([]model.Detail, 0, model.QuestionCount)
	for i := 0; i < model.QuestionCount; i++ {
		answer := i % (model.MaxCorrect + 1)
		details = append(details, model.Detail{
			QuestionIndex: i,
			QuestionWords: []string{"学习", "工作", "生活", "快乐", "朋友"},
			UserAnswer:    &answer,
			CorrectAnswer: answer,
			IsCorrect:     i < correct,
			TimeSpent:     3,
		})
	}
	rec := model.Record{
		ID:           id,
		UserID:       user,
		Difficulty:   model.Medium,
		TableWords:   []string{"学习", "工作"},
		Accuracy:     float64(correct) * 10,
		CorrectCount: correct,
		TotalTime:    30,
		AvgTime:      3,
		Details:      details,
		CreatedAt:    at,
	}
	if err := st.SaveRecord(context.Background(), rec); err != nil {
		t.Fatalf("save record: %v", err)
	}
}

func newTestModel(t *testing.T) (*Model, *store.Store) {
	t.Helper()
	st := openTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	saveRecord(t, st, "rec-old", "ann", 6, base)
	saveRecord(t, st, "rec-new", "ann", 8, base.Add(time.Hour))
	saveRecord(t, st, "rec-bob", "bob", 4, base.Add(2*time.Hour))

	m := NewModel(st, model.StatsConfig{UserID: "ann", CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return m, st
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestOverviewShowsUserStats(t *testing.T) {
	m, _ := newTestModel(t)
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if got := m.report.Stats.Overall.Sessions; got != 2 {
		t.Fatalf("expected 2 sessions for ann, got %d", got)
	}
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "user=ann", "70.0%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestRecordsTabOpensDetailAndDeletes(t *testing.T) {
	m, st := newTestModel(t)
	m.Update(key("right"))
	if m.activeTab != tabRecords {
		t.Fatalf("expected records tab, got %d", m.activeTab)
	}
	if len(m.records) != 2 || m.records[0].ID != "rec-new" {
		t.Fatalf("expected newest record first, got %+v", m.records)
	}

	m.Update(key("enter"))
	if !m.detailMode {
		t.Fatalf("expected detail mode")
	}
	if view := m.View(); !strings.Contains(view, "Record rec-new") {
		t.Fatalf("expected record detail in view:\n%s", view)
	}
	m.Update(key("esc"))
	if m.detailMode {
		t.Fatalf("expected esc to close detail")
	}

	m.Update(key("d"))
	if len(m.records) != 1 || m.records[0].ID != "rec-old" {
		t.Fatalf("expected rec-new deleted, got %+v", m.records)
	}
	if _, err := st.GetRecord(context.Background(), "rec-new"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(m.notice, "rec-new") {
		t.Fatalf("expected delete notice, got %q", m.notice)
	}
}

func TestUserFilterSwitchesReport(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("/"))
	if !m.userMode {
		t.Fatalf("expected user input mode")
	}
	m.userInput.SetValue("bob")
	m.Update(key("enter"))
	if m.userMode {
		t.Fatalf("expected enter to leave input mode")
	}
	if m.cfg.UserID != "bob" || len(m.records) != 1 || m.records[0].ID != "rec-bob" {
		t.Fatalf("expected bob's record, got user=%q %+v", m.cfg.UserID, m.records)
	}

	m.Update(key("/"))
	m.userInput.SetValue("  ")
	m.Update(key("enter"))
	if m.cfg.UserID != model.DefaultUserID {
		t.Fatalf("expected blank user to fall back to %q, got %q", model.DefaultUserID, m.cfg.UserID)
	}
}

func TestUserInputEscKeepsFilter(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("/"))
	m.userInput.SetValue("bob")
	m.Update(key("esc"))
	if m.userMode || m.cfg.UserID != "ann" {
		t.Fatalf("expected esc to cancel, got mode=%v user=%q", m.userMode, m.cfg.UserID)
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("="))
	if m.cfg.CurveWindow != 10 {
		t.Fatalf("expected window 10, got %d", m.cfg.CurveWindow)
	}
	m.Update(key("-"))
	m.Update(key("-"))
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{20, 25, 15},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("nextCurveWindow(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prevCurveWindow(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}

func TestFitLinesAndTruncate(t *testing.T) {
	got := fitLines("ab\ncdef\nxyz", 4, 2)
	if got != "ab  \ncdef" {
		t.Fatalf("unexpected fitLines output %q", got)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("unexpected truncate %q", got)
	}
}

func TestEmptyStoreShowsPlaceholder(t *testing.T) {
	st := openTestStore(t)
	m := NewModel(st, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "No training records found.") {
		t.Fatalf("expected placeholder, got:\n%s", m.View())
	}
	if m.cfg.UserID != model.DefaultUserID {
		t.Fatalf("expected default user, got %q", m.cfg.UserID)
	}
}
