package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalnine/agentbench/internal/scenario"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenarios in the task file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tasks") {
				cfg.Tasks = flagTasks
			}
			scenarios, err := scenario.Load(cfg.Tasks)
			if err != nil {
				return err
			}
			scenarios = scenario.Filter(scenarios, "", flagTags)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWEIGHT\tTURNS\tTAGS")
			for _, s := range scenarios {
				fmt.Fprintf(tw, "%s\t%.2f\t%d\t%s\n", s.ID, s.Weight, len(s.Turns), strings.Join(s.Tags, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&flagTasks, "tasks", "", "scenario file (JSON or YAML)")
	cmd.Flags().StringSliceVar(&flagTags, "tag", nil, "only list scenarios carrying one of these tags")
	return cmd
}
