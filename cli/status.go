package cli

import (
	"encoding/json"
	"fmt"

	"github.com/devlastu/pingstat/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database status",
		Long: `Show database status.

Displays the tool version, database location and size, and event
counts per table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := loadApp()
			if err != nil {
				return err
			}

			if err := app.InitStore(ctx); err != nil {
				return ErrDatabase("failed to open database", err)
			}

			defer func() {
				if err := app.Close(); err != nil {
					app.Logger.Error("failed to close app", zap.Error(err))
				}
			}()

			info, err := app.Store.Info(ctx)
			if err != nil {
				return ErrDatabase("failed to read database info", err)
			}

			status := map[string]any{
				"version":  version.Version,
				"database": info,
			}

			out, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}

	return cmd
}
