package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitools/revstats/internal/batch"
	"github.com/ankitools/revstats/internal/dataset"
)

func newProcessCommand() *cobra.Command {
	var (
		userFrom int64
		userTo   int64
		users    []int64
		output   string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Compute statistics for a range of users and write them as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("from") {
				userFrom = cfg.Process.UserFrom
			}
			if !cmd.Flags().Changed("to") {
				userTo = cfg.Process.UserTo
			}
			if !cmd.Flags().Changed("output") {
				output = cfg.Output.Path
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Process.MaxWorkers
			}

			userIDs := users
			if len(userIDs) == 0 {
				if userFrom < 1 || userTo < userFrom {
					return fmt.Errorf("invalid user range %d..%d", userFrom, userTo)
				}
				userIDs = buildUserIDs(userFrom, userTo)
			}

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			processor := batch.NewProcessor(dataset.NewLoader(dataset.NewDBRepository(db)))
			if _, err := processor.Process(cmd.Context(), userIDs, output, workers); err != nil {
				return fmt.Errorf("failed to process users: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userFrom, "from", 1, "First user ID of the range to process")
	cmd.Flags().Int64Var(&userTo, "to", 10000, "Last user ID of the range to process (inclusive)")
	cmd.Flags().Int64SliceVar(&users, "users", nil, "Explicit user IDs to process instead of a range")
	cmd.Flags().StringVar(&output, "output", "", "Output JSONL file path")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent workers (0 = one per CPU)")

	return cmd
}

// buildUserIDs expands an inclusive ID range.
func buildUserIDs(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}
