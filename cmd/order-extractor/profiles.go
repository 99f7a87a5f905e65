package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/order-extractor/internal/profiles"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available profiles and their aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := profiles.NewRegistry(logger)
		if _, err := registry.LoadDir(cfg.Profiles.Dir); err != nil {
			logger.Warn("some profiles failed to load", "dir", cfg.Profiles.Dir, "error", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tALIASES\tINPUT\tSOURCE\tDESCRIPTION")
		for _, e := range registry.List() {
			name := e.Name
			if strings.EqualFold(e.Name, cfg.Profiles.Default) {
				name += " *"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, strings.Join(e.Aliases, ","), e.Input, e.Source, e.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
