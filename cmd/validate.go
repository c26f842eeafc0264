package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalnine/agentbench/internal/profile"
	"github.com/signalnine/agentbench/internal/scenario"
	"github.com/signalnine/agentbench/internal/tuner"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [tasks-file]",
		Short: "Check the harness config, the scenario file and the profile config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			tasks := cfg.Tasks
			if len(args) > 0 {
				tasks = args[0]
			}
			scenarios, err := scenario.Load(tasks)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range scenarios {
				if len(s.Turns) == 0 {
					fmt.Fprintf(out, "warning: scenario %s has no turns and will always score 0\n", s.ID)
				}
			}
			fmt.Fprintf(out, "%s: %d scenarios %s\n", tasks, len(scenarios), okLabel("OK"))

			cfgPath := profile.ConfigPath(cfg.ProfileRoot)
			data, err := os.ReadFile(cfgPath)
			switch {
			case errors.Is(err, os.ErrNotExist):
				fmt.Fprintf(out, "%s: not created yet\n", cfgPath)
			case err != nil:
				return err
			default:
				if err := tuner.Validate(string(data)); err != nil {
					return fmt.Errorf("%s: %w", cfgPath, err)
				}
				fmt.Fprintf(out, "%s: %s\n", cfgPath, okLabel("OK"))
			}
			return nil
		},
	}
}
