package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View effective configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			// Effective values after defaults, file and env are merged.
			settings := map[string]any{
				"server": map[string]any{
					"listen_addr": app.Config.Server.ListenAddr,
				},
				"storage": map[string]any{
					"path": app.Config.Storage.Path,
				},
				"session": map[string]any{
					"timeout":  app.Config.Session.Timeout.String(),
					"timezone": app.Config.Session.Timezone,
				},
				"ingest": map[string]any{
					"events_file":    app.Config.Ingest.EventsFile,
					"timezones_file": app.Config.Ingest.TimezonesFile,
				},
			}

			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	return cmd
}
