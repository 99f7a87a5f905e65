package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the orders and products of one document",
	Long: `extract reads one PDF or text document with the selected profile and writes
<name>_tabelas.xlsx to the output directory. A document where the profile finds nothing
still gets a workbook with the extracted text, so the layout can be inspected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{history: !flagNoHistory, outDir: cfg.Ingest.OutputDir})
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.proc.Process(cmd.Context(), pipeline.Request{Path: args[0], Profile: cfg.Profiles.Default, Force: true})
		if err != nil {
			return err
		}
		if extractJSON {
			return writeJSON(cmd.OutOrStdout(), out)
		}
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print orders and products as JSON instead of a summary")
	rootCmd.AddCommand(extractCmd)
}

type jsonOutcome struct {
	RunID     string                 `json:"run_id"`
	Status    string                 `json:"status"`
	Profile   string                 `json:"profile"`
	Output    string                 `json:"output,omitempty"`
	Orders    []entity.Order         `json:"orders"`
	Products  []entity.ProductRecord `json:"products"`
	Coercions []engine.Coercion      `json:"coercions,omitempty"`
}

func writeJSON(w io.Writer, out *pipeline.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonOutcome{
		RunID:     out.Run.ID.String(),
		Status:    string(out.Run.Status),
		Profile:   out.Profile,
		Output:    out.OutputPath,
		Orders:    nonNil(out.Orders),
		Products:  nonNil(out.Products),
		Coercions: out.Coercions,
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func printOutcome(w io.Writer, out *pipeline.Outcome) {
	if out.Empty() {
		fmt.Fprintf(w, "%s: no tables found with profile %s (%d lines of text)\n",
			out.Run.SourcePath, out.Profile, len(out.Lines))
		fmt.Fprintf(w, "  try another --profile, or inspect the text with: order-extractor dump %s\n", out.Run.SourcePath)
	} else {
		fmt.Fprintf(w, "%s: %d orders, %d products (profile %s)\n",
			out.Run.SourcePath, len(out.Orders), len(out.Products), out.Profile)
		for _, o := range out.Orders {
			fmt.Fprintf(w, "  order %s  %s -> %s\n", o.Number, o.Supplier, o.Client)
		}
	}
	if n := len(out.Coercions); n > 0 {
		fmt.Fprintf(w, "  %d numeric values could not be read and were set to 0\n", n)
	}
	if out.OutputPath != "" {
		fmt.Fprintf(w, "  workbook: %s\n", out.OutputPath)
	}
}
