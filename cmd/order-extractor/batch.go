package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-extractor/internal/ingest"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
)

var (
	batchConcurrency int
	batchExts        []string
	batchHidden      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>...",
	Short: "Extract every supported document under the given paths",
	Long: `batch walks the given directories (and takes the given files), processes every
supported document with the selected profile and writes one workbook per document.
A failing document does not stop the others; the command fails if any document failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var reqs []pipeline.Request
		for _, root := range args {
			paths, skipped, stats, err := ingest.Discover(root, batchExts, !batchHidden)
			if err != nil {
				return err
			}
			for _, s := range skipped {
				logger.Warn("skipping unreadable entry", "path", s.Path, "error", s.Err)
			}
			logger.Info("discovered documents", "root", root, "scanned", stats.Scanned, "matched", stats.Matched)
			for _, p := range paths {
				reqs = append(reqs, pipeline.Request{Path: p, Profile: cfg.Profiles.Default})
			}
		}
		if len(reqs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no supported documents found")
			return nil
		}

		a, err := newApp(cmd.Context(), appOptions{history: !flagNoHistory, outDir: cfg.Ingest.OutputDir})
		if err != nil {
			return err
		}
		defer a.Close()

		items, stats := a.proc.Batch(cmd.Context(), reqs, batchConcurrency)
		w := cmd.OutOrStdout()
		for _, it := range items {
			name := filepath.Base(it.Request.Path)
			switch {
			case it.Err != nil:
				fmt.Fprintf(w, "FAIL   %s: %v\n", name, it.Err)
			case it.Outcome.Empty():
				fmt.Fprintf(w, "EMPTY  %s\n", name)
			default:
				fmt.Fprintf(w, "OK     %s: %d orders, %d products\n", name, len(it.Outcome.Orders), len(it.Outcome.Products))
			}
		}
		fmt.Fprintf(w, "\n%d documents: %d ok, %d empty, %d failed in %s\n",
			stats.Total, stats.Succeeded, stats.Empty, stats.Failed, stats.Elapsed.Round(time.Millisecond))
		if stats.Failed > 0 {
			return fmt.Errorf("%d of %d documents failed", stats.Failed, stats.Total)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", runtime.NumCPU(), "documents processed at the same time")
	batchCmd.Flags().StringSliceVar(&batchExts, "ext", nil, "only these extensions (default pdf,txt)")
	batchCmd.Flags().BoolVar(&batchHidden, "hidden", false, "include hidden files and directories")
	rootCmd.AddCommand(batchCmd)
}
