package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/wordtally/internal/model"
)

// CountAggregate summarises answers to questions sharing one correct count.
type CountAggregate struct {
	CorrectAnswer int
	Seen          int
	Right         int
	Over          int
	Under         int
	Skipped       int
}

// Accuracy returns the share of right answers in percent.
func (c CountAggregate) Accuracy() float64 {
	if c.Seen == 0 {
		return 100
	}
	return float64(c.Right) / float64(c.Seen) * 100
}

// WeakCounts aggregates details by correct count, weakest first.
func WeakCounts(records []model.Record) []CountAggregate {
	byCount := map[int]*CountAggregate{}
	for _, rec := range records {
		for _, d := range rec.Details {
			agg, ok := byCount[d.CorrectAnswer]
			if !ok {
				agg = &CountAggregate{CorrectAnswer: d.CorrectAnswer}
				byCount[d.CorrectAnswer] = agg
			}
			agg.Seen++
			switch {
			case d.UserAnswer == nil:
				agg.Skipped++
			case *d.UserAnswer == d.CorrectAnswer:
				agg.Right++
			case *d.UserAnswer > d.CorrectAnswer:
				agg.Over++
			default:
				agg.Under++
			}
		}
	}
	out := make([]CountAggregate, 0, len(byCount))
	for _, agg := range byCount {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Accuracy(), out[j].Accuracy()
		if ai == aj {
			return out[i].CorrectAnswer < out[j].CorrectAnswer
		}
		return ai < aj
	})
	return out
}

// RenderWeakCounts prints WeakCounts as a table.
func RenderWeakCounts(w io.Writer, aggs []CountAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.CorrectAnswer),
			fmt.Sprintf("%d", a.Seen),
			Percent(a.Accuracy()),
			fmt.Sprintf("%d", a.Over),
			fmt.Sprintf("%d", a.Under),
			fmt.Sprintf("%d", a.Skipped),
		})
	}
	headers := []string{"Table words", "Seen", "Accuracy", "Over", "Under", "Skipped"}
	if err := writeLines(w, "By correct count (windowed)"); err != nil {
		return err
	}
	if err := writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true})...); err != nil {
		return err
	}
	return writeLines(w, "")
}
