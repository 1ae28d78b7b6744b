package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schedly/schedly/internal/config"
	"github.com/schedly/schedly/internal/server"
	"github.com/schedly/schedly/internal/timetable"
	"github.com/schedly/schedly/internal/tools/timetable_tools"
)

func newCheckCmd() *cobra.Command {
	var (
		weeks         int
		validateStart string
		validateEnd   string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build the availability grid once and print it",
		Long: `Collect the busy times of the configured owner and members, build the
weekly availability grid and print it.

By default the grid covers the current week. Use --weeks to look at a
different one, e.g. --weeks 1 for next week or --weeks -1 for last week.

With --validate-start and --validate-end (RFC 3339 timestamps) the given
range is checked against the grid after building it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (validateStart == "") != (validateEnd == "") {
				return errors.New("--validate-start and --validate-end must be used together")
			}
			return runCheck(cmd.Context(), weeks, validateStart, validateEnd)
		},
	}

	cmd.Flags().IntVar(&weeks, "weeks", 0, "Week offset from the current week (negative for past weeks)")
	cmd.Flags().StringVar(&validateStart, "validate-start", "", "Candidate event start (RFC 3339)")
	cmd.Flags().StringVar(&validateEnd, "validate-end", "", "Candidate event end (RFC 3339)")

	return cmd
}

// loadConfig resolves the --config flag against the default location.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

func runCheck(ctx context.Context, weeks int, validateStart, validateEnd string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sc, err := server.NewServerContext(ctx, cfg)
	if err != nil {
		return err
	}
	defer sc.Shutdown()

	session, err := sc.Session()
	if err != nil {
		return err
	}

	owner := sc.Owner()
	members := sc.Members()

	direction := timetable.DirectionNext
	if weeks < 0 {
		direction = timetable.DirectionPrevious
		weeks = -weeks
	}
	if weeks > 0 {
		dest := session.Engine.Window().WeekStart
		if direction == timetable.DirectionNext {
			dest += int64(weeks) * timetable.WeekMillis
		} else {
			dest -= int64(weeks) * timetable.WeekMillis
		}
		session.SyncWindowFor(dest)
	}

	var grid *timetable.Grid
	if weeks == 0 {
		grid, err = session.Engine.Refresh(ctx, owner, members)
	} else {
		for i := 0; i < weeks; i++ {
			grid, err = session.Engine.Navigate(ctx, direction, owner, members)
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to build the grid: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	fmt.Print(timetable_tools.RenderGrid(grid, session.Engine.Window(), loc))

	if validateStart != "" {
		start, err := time.Parse(time.RFC3339, validateStart)
		if err != nil {
			return fmt.Errorf("invalid --validate-start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, validateEnd)
		if err != nil {
			return fmt.Errorf("invalid --validate-end: %w", err)
		}

		outcome := session.Engine.Validate(timetable.SelectionRange{
			Start: start.UnixMilli(),
			End:   end.UnixMilli(),
		})
		switch {
		case outcome == nil:
			fmt.Println("\nSelected time is valid.")
		case outcome.Blocking:
			fmt.Printf("\nBlocking: %s\n", outcome.Message)
		default:
			fmt.Printf("\nWarning: %s\n", outcome.Message)
		}
	}

	return nil
}
