package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/schedly/schedly/internal/server"
	"github.com/schedly/schedly/internal/tools/timetable_tools"
)

func newWatchCmd() *cobra.Command {
	var printGrid bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the availability grid on a cron schedule",
		Long: `Run in the foreground and rebuild the availability grid on the schedule
configured under "refresh" (default: every 15 minutes).

The grid is rebuilt once at startup and then on every tick. Stop with
Ctrl-C or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(printGrid)
		},
	}

	cmd.Flags().BoolVar(&printGrid, "print", false, "Print the grid after every refresh instead of only logging")

	return cmd
}

func runWatch(printGrid bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

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

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	refresh := func() {
		start := time.Now()
		session.SyncWindow()
		grid, err := session.Engine.Refresh(ctx, sc.Owner(), sc.Members())
		if err != nil {
			slog.Error("refresh failed", "error", err)
			return
		}
		slog.Info("grid refreshed",
			"week_start", session.Engine.Window().WeekStart,
			"duration", time.Since(start))
		if printGrid {
			fmt.Print(timetable_tools.RenderGrid(grid, session.Engine.Window(), loc))
		}
	}

	// First build happens immediately so the grid is never stale for a
	// full cron interval after startup.
	refresh()

	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshCron, refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshCron, err)
	}
	c.Start()
	slog.Info("watching", "schedule", cfg.RefreshCron)

	<-ctx.Done()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
	}
	return nil
}
