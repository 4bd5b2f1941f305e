package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/stats"
	"github.com/verte-zerg/wordtally/internal/statsui"
	"github.com/verte-zerg/wordtally/internal/store"
)

var (
	statsUser        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
	statsColor       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", model.DefaultUserID, "user id")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text instead of opening the TUI")
	cmd.Flags().BoolVar(&statsColor, "color", false, "force colour in plain output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	user, err := loadStatsUser(cmd)
	if err != nil {
		return err
	}
	since, err := parseDateFlag("since", statsSince)
	if err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	cfg := model.StatsConfig{
		UserID:      user,
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	return withStore(func(st *store.Store) error {
		if statsPlain {
			return printStats(cmd, st, cfg)
		}
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	})
}

// loadStatsUser resolves the user from the flag or the [training] user key.
func loadStatsUser(cmd *cobra.Command) (string, error) {
	user := statsUser
	fileCfg, err := loadConfigFile()
	if err != nil {
		return "", err
	}
	applyStringConfig(cmd, "user", &user, fileCfg.Training.User)
	return user, nil
}

func printStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Stats); err != nil {
		return err
	}
	if report.Stats.Overall.Sessions == 0 {
		return nil
	}
	if err := stats.RenderDifficulty(out, report.Stats.ByDifficulty); err != nil {
		return err
	}
	useColor := stats.ShouldUseColor(os.Stdout, statsColor)
	if err := stats.RenderCurves(out, report.Records, cfg.CurveWindow, stats.TerminalWidth(), useColor); err != nil {
		return err
	}
	return stats.RenderWeakCounts(out, stats.WeakCounts(report.Window))
}
