package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wordtally/internal/model"
)

const gridColumns = 5

// gridLines lays words out in rows of cols cells padded to the widest word.
func gridLines(words []string, cols int) []string {
	if len(words) == 0 || cols <= 0 {
		return nil
	}
	cell := 0
	for _, w := range words {
		cell = max(cell, runewidth.StringWidth(w))
	}
	lines := make([]string, 0, (len(words)+cols-1)/cols)
	for start := 0; start < len(words); start += cols {
		end := min(start+cols, len(words))
		cells := make([]string, 0, end-start)
		for _, w := range words[start:end] {
			cells = append(cells, runewidth.FillRight(w, cell))
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return lines
}

type navState struct {
	current  int
	answered func(int) bool
	marked   func(int) bool
}

// navStrip renders one cell per question: the current one bracketed, answered ones
// highlighted, marked ones suffixed with '*'.
func navStrip(st navState) string {
	cells := make([]string, 0, model.QuestionCount)
	for n := 1; n <= model.QuestionCount; n++ {
		label := fmt.Sprintf("%d", n)
		if st.marked(n) {
			label += "*"
		} else {
			label += " "
		}
		style := pendingStyle
		if st.answered(n) {
			style = answeredStyle
		}
		if n == st.current {
			label = "[" + label + "]"
			style = style.Bold(true).Underline(true)
		} else {
			label = " " + label + " "
		}
		cells = append(cells, style.Render(label))
	}
	return strings.Join(cells, "")
}

func answerChoices(selected int) string {
	parts := make([]string, 0, model.MaxCorrect+1)
	for v := 0; v <= model.MaxCorrect; v++ {
		label := fmt.Sprintf(" %d ", v)
		if v == selected {
			parts = append(parts, selectedStyle.Render(label))
			continue
		}
		parts = append(parts, choiceStyle.Render(label))
	}
	return strings.Join(parts, " ")
}

func center(content string, width, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
