package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/agentbench/internal/report"
	"github.com/signalnine/agentbench/internal/result"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [loop-report.json|summary.json]",
		Short: "Render a stored loop report or run summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := artifactPath(cmd, args)
			if err != nil {
				return err
			}
			return report.Generate(path, flagFormat, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", report.FormatTable, "output format (table, markdown, json)")
	return cmd
}

// artifactPath returns args[0] or, when absent, the latest run summary of
// the configured profile.
func artifactPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	latest := filepath.Join(result.RunsDir(cfg.ProfileRoot), "latest.summary.json")
	resolved, err := filepath.EvalSymlinks(latest)
	if err != nil {
		return "", fmt.Errorf("resolving latest summary: %w", err)
	}
	return resolved, nil
}
