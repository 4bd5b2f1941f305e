package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/stats"
	"github.com/verte-zerg/wordtally/internal/store"
)

var (
	recordsUser   string
	recordsSince  string
	recordsUntil  string
	recordsLimit  int
	recordsOffset int
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect training records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE:  runRecordsListCmd,
	}
	listCmd.Flags().StringVar(&recordsUser, "user", "", "user filter")
	listCmd.Flags().StringVar(&recordsSince, "since", "", "start date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&recordsUntil, "until", "", "end date, exclusive (YYYY-MM-DD)")
	listCmd.Flags().IntVar(&recordsLimit, "limit", 20, "page size (0 for all)")
	listCmd.Flags().IntVar(&recordsOffset, "offset", 0, "records to skip")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a record with its questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				rec, err := st.GetRecord(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return stats.RenderRecord(cmd.OutOrStdout(), rec)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				return st.DeleteRecord(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(listCmd, showCmd, deleteCmd)
	return cmd
}

func runRecordsListCmd(cmd *cobra.Command, _ []string) error {
	if recordsLimit < 0 || recordsOffset < 0 {
		return fmt.Errorf("--limit and --offset must be >= 0")
	}
	since, err := parseDateFlag("since", recordsSince)
	if err != nil {
		return err
	}
	until, err := parseDateFlag("until", recordsUntil)
	if err != nil {
		return err
	}
	filter := model.RecordFilter{
		UserID: recordsUser,
		Since:  since,
		Until:  until,
		Limit:  recordsLimit,
		Offset: recordsOffset,
	}
	return withStore(func(st *store.Store) error {
		records, total, err := st.ListRecords(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		if err := stats.RenderRecords(cmd.OutOrStdout(), records); err != nil {
			return err
		}
		if len(records) > 0 {
			logErrf("Showing %d-%d of %d\n", recordsOffset+1, recordsOffset+len(records), total)
		}
		return nil
	})
}

// parseDateFlag parses a local YYYY-MM-DD date. Empty values yield nil.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value: %w", name, err)
	}
	return &parsed, nil
}
