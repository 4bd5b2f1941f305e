package stats

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/wordtally/internal/model"
)

const (
	colorReset          = "\x1b[0m"
	colorAccuracy       = "\x1b[36m"
	colorTime           = "\x1b[33m"
	curveLabelWidth     = 16
	terminalWidthBackup = 80
)

// RenderCurves prints accuracy and total-time sparklines smoothed over window. Only the
// most recent records that fit width are drawn.
func RenderCurves(w io.Writer, records []model.RecordSummary, window, width int, useColor bool) error {
	if len(records) == 0 {
		return nil
	}
	accs := make([]float64, len(records))
	times := make([]float64, len(records))
	maxTime := 0.0
	for i, r := range records {
		accs[i] = r.Accuracy
		times[i] = float64(r.TotalTime)
		maxTime = max(maxTime, times[i])
	}
	accs = MovingAverage(accs, window)
	times = MovingAverage(times, window)

	if width <= 0 {
		width = terminalWidthBackup
	}
	if span := width - curveLabelWidth; span > 0 && len(accs) > span {
		accs = accs[len(accs)-span:]
		times = times[len(times)-span:]
	}

	if _, err := fmt.Fprintf(w, "Learning curves (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	lines := []struct {
		label string
		color string
		spark string
		last  string
	}{
		{"Accuracy", colorAccuracy, Sparkline(accs, 0, 100), Percent(accs[len(accs)-1])},
		{"Total time", colorTime, Sparkline(times, 0, maxTime), Seconds(times[len(times)-1])},
	}
	for _, l := range lines {
		spark := l.spark
		if useColor {
			spark = l.color + spark + colorReset
		}
		if _, err := fmt.Fprintf(w, "%-11s %s %s\n", l.label, spark, l.last); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// TerminalWidth returns the stdout width, or 80 when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset. force overrides
// the terminal check.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
