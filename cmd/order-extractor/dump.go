package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
	"github.com/joseph-ayodele/order-extractor/internal/textextract"
)

var (
	dumpRaw      bool
	dumpNumbered bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the text lines a profile sees for a document",
	Long: `dump prints the normalized lines the selected profile scans, the same text that
goes to the diagnostic sheet when nothing is found. With --raw it prints the lines as the
text extractor returns them (word-position profiles get their reassembled lines).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		var lines []string
		if dumpRaw {
			if lines, err = rawLines(cmd, a, args[0]); err != nil {
				return err
			}
		} else {
			out, err := a.proc.Process(cmd.Context(), pipeline.Request{Path: args[0], Profile: cfg.Profiles.Default, Force: true})
			if err != nil {
				return err
			}
			lines = out.Lines
		}

		w := cmd.OutOrStdout()
		for i, l := range lines {
			if dumpNumbered {
				fmt.Fprintf(w, "%5d  %s\n", i+1, l)
				continue
			}
			fmt.Fprintln(w, l)
		}
		return nil
	},
}

func rawLines(cmd *cobra.Command, a *app, path string) ([]string, error) {
	entry, err := a.registry.Get(cfg.Profiles.Default)
	if err != nil {
		return nil, err
	}
	if entry.Input == engine.InputWords {
		doc, err := a.text.Words(cmd.Context(), path)
		if err != nil {
			return nil, err
		}
		return engine.ReassembleLines(doc.Words, cfg.Extract.LineTolerance), nil
	}
	doc, err := a.text.Lines(cmd.Context(), path, textextract.Mode(cfg.Extract.TextMode))
	if err != nil {
		return nil, err
	}
	return doc.Lines, nil
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpRaw, "raw", false, "print extractor lines before normalization")
	dumpCmd.Flags().BoolVarP(&dumpNumbered, "numbered", "n", false, "prefix every line with its number")
	rootCmd.AddCommand(dumpCmd)
}
