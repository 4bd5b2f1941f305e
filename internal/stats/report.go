// Package stats contains training statistics and their text rendering.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Stats model.UserStats
	// Records are the selected records, oldest first.
	Records []model.RecordSummary
	// Window holds the full records of the curve window, oldest first.
	Window []model.Record
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	userStats, err := st.UserStats(ctx, cfg.UserID, time.Now())
	if err != nil {
		return Report{}, err
	}
	records, _, err := st.ListRecords(ctx, model.RecordFilter{UserID: cfg.UserID, Since: cfg.Since})
	if err != nil {
		return Report{}, err
	}
	reverse(records)
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}

	windowed := records
	if cfg.CurveWindow > 0 && len(windowed) > cfg.CurveWindow {
		windowed = windowed[len(windowed)-cfg.CurveWindow:]
	}
	window := make([]model.Record, 0, len(windowed))
	for _, sum := range windowed {
		rec, err := st.GetRecord(ctx, sum.ID)
		if err != nil {
			return Report{}, err
		}
		window = append(window, rec)
	}

	return Report{
		Stats:   userStats,
		Records: records,
		Window:  window,
	}, nil
}

func reverse[T any](values []T) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}
