package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-extractor/internal/common"
)

var (
	flagProfile      string
	flagProfilesDir  string
	flagDBURL        string
	flagNoHistory    bool
	flagOutDir       string
	flagBackend      string
	flagMode         string
	flagEANThreshold int
	flagLogFormat    string
	flagVerbose      bool
)

// set by PersistentPreRunE
var (
	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "order-extractor",
	Short: "Extract purchase orders and their products from PDF and text documents",
	Long: `order-extractor reads purchase-order documents (PDF or plain text), finds the orders
and product lines with a vendor profile, and writes one workbook per document.

Configuration comes from the environment (and .env); flags override it.

Example Usage:
  order-extractor extract pedido.pdf -p redebiz -o out/
  order-extractor batch inbox/ --concurrency 4
  order-extractor dump pedido.pdf -p kamel
  order-extractor profiles`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(flagLogFormat, flagVerbose)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(logger)
		cfg = common.LoadConfig()
		applyFlags(cmd, cfg)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagProfile, "profile", "p", "", "profile name or alias (default DEFAULT_PROFILE)")
	pf.StringVar(&flagProfilesDir, "profiles-dir", "", "directory with extra *.yaml profiles (default PROFILES_DIR)")
	pf.StringVar(&flagDBURL, "db-url", "", "postgres URL or sqlite://<path> for the run history (default DB_URL)")
	pf.BoolVar(&flagNoHistory, "no-history", false, "do not record runs in the database")
	pf.StringVarP(&flagOutDir, "out", "o", "", "directory for the workbooks (default OUTPUT_DIR)")
	pf.StringVar(&flagBackend, "backend", "", "pdf text backend: pdftotext or native (default EXTRACT_BACKEND)")
	pf.StringVar(&flagMode, "mode", "", "pdftotext line mode: raw or layout (default EXTRACT_TEXT_MODE)")
	pf.IntVar(&flagEANThreshold, "ean-threshold", 0, "digits above which a lone leading identifier is an EAN (default EAN_THRESHOLD)")
	pf.StringVar(&flagLogFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// applyFlags copies the flags the user set over the environment configuration.
func applyFlags(cmd *cobra.Command, c *common.Config) {
	fs := cmd.Flags()
	if fs.Changed("profile") {
		c.Profiles.Default = flagProfile
	}
	if fs.Changed("profiles-dir") {
		c.Profiles.Dir = flagProfilesDir
	}
	if fs.Changed("db-url") {
		c.Database.DSN = flagDBURL
	}
	if fs.Changed("out") {
		c.Ingest.OutputDir = flagOutDir
	}
	if fs.Changed("backend") {
		c.Extract.Backend = flagBackend
	}
	if fs.Changed("mode") {
		c.Extract.TextMode = flagMode
	}
	if fs.Changed("ean-threshold") {
		c.Engine.EANThreshold = flagEANThreshold
	}
}

func newLogger(format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
