package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-notes/internal/storage"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if !cfg.StorageEnabled() {
				err := errors.New("run history is disabled (DB_PATH=off)")
				log.Error(ctx, "Error: %v", err)
				return err
			}

			store, err := storage.New(cfg.Storage.DBPath)
			if err != nil {
				log.Error(ctx, "Error: %v", err)
				return err
			}
			defer store.Close()

			runs, err := store.Recent(ctx, limit)
			if err != nil {
				log.Error(ctx, "Error: %v", err)
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func printRuns(out io.Writer, runs []storage.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tDURATION\tAUDIO\tRESULT")
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		result := r.SummaryPath
		if r.Status == storage.StatusFailed {
			result = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Status,
			duration,
			filepath.Base(r.AudioPath),
			result,
		)
	}
	return tw.Flush()
}
