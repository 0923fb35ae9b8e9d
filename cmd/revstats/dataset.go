package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitools/revstats/internal/dataset"
)

func newDatasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage the local review dataset store",
	}
	cmd.AddCommand(newDatasetImportCommand())
	cmd.AddCommand(newDatasetFetchCommand())
	return cmd
}

func newDatasetImportCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import revlogs.csv, cards.csv and decks.csv into the dataset store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := dataset.NewImporter(db).Import(cmd.Context(), dir); err != nil {
				return fmt.Errorf("failed to import the dataset: %w", err)
			}
			fmt.Printf("Dataset imported into %s\n", cfg.Dataset.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory containing the dataset CSV files")

	return cmd
}

func newDatasetFetchCommand() *cobra.Command {
	var (
		dir           string
		retryAttempts uint
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the dataset CSV files from the configured source URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Dataset.SourceURL == "" {
				return fmt.Errorf("dataset.source_url is not configured")
			}

			fetcher := dataset.NewFetcher(cfg.Dataset.SourceURL, retryAttempts)
			if err := fetcher.Fetch(cmd.Context(), dir); err != nil {
				return fmt.Errorf("failed to fetch the dataset: %w", err)
			}
			fmt.Printf("Dataset files downloaded into %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to download the dataset CSV files into")
	cmd.Flags().UintVar(&retryAttempts, "retry-attempts", 3, "Extra download attempts on transient failures")

	return cmd
}
