package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Query statistics from the command line",
		Long: `Query user or game statistics directly, without the HTTP server.

Output is JSON in the same shape the REST API returns.`,
	}

	cmd.AddCommand(
		newStatsUserCmd(),
		newStatsGameCmd(),
	)

	return cmd
}

func newStatsUserCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "user <user_id>",
		Short: "Per-user statistics",
		Args:  cobra.ExactArgs(1),
		Example: `  pingstat stats user e2032607-44c2-4fc2-8f10-dee88a14ee42
  pingstat stats user e2032607-44c2-4fc2-8f10-dee88a14ee42 --date 2024-03-15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(app *App) (any, error) {
				day, err := parseDay(app, date)
				if err != nil {
					return nil, err
				}
				return app.Aggregator.UserStats(cmd.Context(), args[0], day)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "restrict to a calendar day (YYYY-MM-DD)")

	return cmd
}

func newStatsGameCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "game [game_id]",
		Short: "Per-game statistics",
		Long:  `Per-game statistics. Without a game_id the rollup covers all games.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(app *App) (any, error) {
				day, err := parseDay(app, date)
				if err != nil {
					return nil, err
				}
				gameID := ""
				if len(args) > 0 {
					gameID = args[0]
				}
				return app.Aggregator.GameStats(cmd.Context(), gameID, day)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "restrict to a calendar day (YYYY-MM-DD)")

	return cmd
}

// withStore runs fn against an initialized store and prints the result as JSON.
func withStore(cmd *cobra.Command, fn func(app *App) (any, error)) error {
	app, err := loadApp()
	if err != nil {
		return err
	}

	if err := app.InitStore(cmd.Context()); err != nil {
		return ErrDatabase("failed to open database", err)
	}

	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("failed to close app", zap.Error(err))
		}
	}()

	result, err := fn(app)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}

func parseDay(app *App, date string) (*time.Time, error) {
	if date == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, app.Config.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return &day, nil
}
