package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			status, err := client.GetJSON(cmd.Context(), "/healthz", &result)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			if status != http.StatusOK {
				return fmt.Errorf("server is %s (HTTP %d)", result.Status, status)
			}
			return nil
		},
	}
}
