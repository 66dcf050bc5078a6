package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := HealthResult{Status: "ok", Backend: "ok", Server: cfg.ServerURL}
			if err := app.Backend.Ping(cmd.Context()); err != nil {
				result.Status = "degraded"
				result.Backend = "unreachable"
				result.Error = err.Error()
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
