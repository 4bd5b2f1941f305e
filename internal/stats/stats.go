package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/result"
	"github.com/verte-zerg/wordtally/internal/timer"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// MovingAverage computes a trailing mean; the first values average what is available.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values on a fixed [lo, hi] scale, one block per value.
func Sparkline(values []float64, lo, hi float64) string {
	if len(values) == 0 {
		return ""
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkBlocks[0]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - lo) / (hi - lo)
		idx := int(math.Round(pos * float64(len(sparkBlocks)-1)))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// Percent formats an accuracy with one decimal.
func Percent(v float64) string {
	return result.FormatOneDecimal(v) + "%"
}

// Seconds formats a duration in seconds as MM:SS.
func Seconds(v float64) string {
	return timer.Format(int64(math.Round(v)))
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints overall and last-week figures.
func RenderSummary(w io.Writer, st model.UserStats) error {
	if st.Overall.Sessions == 0 {
		return writeLines(w, "No training records found.", "")
	}
	title := "Summary"
	if st.UserID != "" {
		title = fmt.Sprintf("Summary (%s)", st.UserID)
	}
	rows := [][]string{
		{"Sessions", fmt.Sprintf("%d", st.Overall.Sessions), fmt.Sprintf("%d", st.RecentWeek.Sessions)},
		{"Avg accuracy", Percent(st.Overall.AvgAccuracy), Percent(st.RecentWeek.AvgAccuracy)},
		{"Avg total time", Seconds(st.Overall.AvgTotalTime), Seconds(st.RecentWeek.AvgTotalTime)},
		{"Avg question time", result.FormatOneDecimal(st.Overall.AvgQuestionTime) + "s", "-"},
		{"Best accuracy", Percent(st.Overall.BestAccuracy), "-"},
		{"Best time", timer.Format(int64(st.Overall.BestTime)), "-"},
	}
	lines := formatTable([]string{"", "All time", "Last 7 days"}, rows, map[int]bool{1: true, 2: true})
	if err := writeLines(w, title); err != nil {
		return err
	}
	if err := writeLines(w, lines...); err != nil {
		return err
	}
	return writeLines(w, "")
}

// RenderDifficulty prints per-difficulty counts and accuracy.
func RenderDifficulty(w io.Writer, rows []model.DifficultyStats) error {
	if len(rows) == 0 {
		return nil
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{string(r.Difficulty), fmt.Sprintf("%d", r.Count), Percent(r.AvgAccuracy)})
	}
	if err := writeLines(w, "By difficulty"); err != nil {
		return err
	}
	if err := writeLines(w, formatTable([]string{"Difficulty", "Sessions", "Accuracy"}, tableRows, map[int]bool{1: true, 2: true})...); err != nil {
		return err
	}
	return writeLines(w, "")
}

// RenderRecords prints one line per record in the given order.
func RenderRecords(w io.Writer, records []model.RecordSummary) error {
	if len(records) == 0 {
		return writeLines(w, "No training records found.")
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.UserID,
			string(r.Difficulty),
			fmt.Sprintf("%d/%d", r.CorrectCount, model.QuestionCount),
			Percent(r.Accuracy),
			timer.Format(int64(r.TotalTime)),
		})
	}
	headers := []string{"ID", "Date", "User", "Difficulty", "Correct", "Accuracy", "Time"}
	return writeLines(w, formatTable(headers, rows, map[int]bool{4: true, 5: true, 6: true})...)
}

// RenderRecord prints a record with its table and per-question details.
func RenderRecord(w io.Writer, rec model.Record) error {
	header := []string{
		fmt.Sprintf("Record %s", rec.ID),
		fmt.Sprintf("Date: %s", rec.CreatedAt.Local().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("User: %s", rec.UserID),
		fmt.Sprintf("Difficulty: %s", rec.Difficulty),
		fmt.Sprintf("Correct: %d/%d (%s)", rec.CorrectCount, model.QuestionCount, Percent(rec.Accuracy)),
		fmt.Sprintf("Time: %s (avg %ss per question)", timer.Format(int64(rec.TotalTime)), result.FormatOneDecimal(rec.AvgTime)),
		fmt.Sprintf("Table: %s", strings.Join(rec.TableWords, " ")),
		"",
	}
	if err := writeLines(w, header...); err != nil {
		return err
	}
	if len(rec.Details) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(rec.Details))
	for _, d := range rec.Details {
		answer := "-"
		if d.UserAnswer != nil {
			answer = fmt.Sprintf("%d", *d.UserAnswer)
		}
		mark := "x"
		if d.IsCorrect {
			mark = "ok"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", d.QuestionIndex+1),
			strings.Join(d.QuestionWords, " "),
			answer,
			fmt.Sprintf("%d", d.CorrectAnswer),
			mark,
			fmt.Sprintf("%ds", d.TimeSpent),
		})
	}
	headers := []string{"#", "Words", "Answer", "Correct", "", "Time"}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true, 5: true})...)
}
