package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type initParams struct {
	eventsFile    string
	timezonesFile string
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var p initParams

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Load events into the database",
		Long: `Reset the database and bulk load events from JSONL files.

Malformed event lines are skipped and reported; they never abort the
load. Reloading the same file is idempotent.`,
		Example: `  pingstat init --events events.jsonl
  pingstat init --events events.jsonl --timezones timezones.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := loadApp()
			if err != nil {
				return err
			}

			if p.eventsFile != "" {
				app.Config.Ingest.EventsFile = p.eventsFile
			}
			if p.timezonesFile != "" {
				app.Config.Ingest.TimezonesFile = p.timezonesFile
			}

			if err := app.InitStore(ctx); err != nil {
				return ErrDatabase("failed to open database", err)
			}

			defer func() {
				if err := app.Close(); err != nil {
					app.Logger.Error("failed to close app", zap.Error(err))
				}
			}()

			report, err := app.Loader.Load(ctx, app.Config.Ingest.EventsFile, app.Config.Ingest.TimezonesFile)
			if err != nil {
				return ErrIngest("failed to load events", err)
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}

	cmd.Flags().StringVar(&p.eventsFile, "events", "", "path to events JSONL file (overrides config)")
	cmd.Flags().StringVar(&p.timezonesFile, "timezones", "", "path to timezones JSONL file (overrides config)")

	return cmd
}
