package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AI2HU/geolens/internal/scheduler"
)

var runNowID string

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the schedule daemon without the API server",
	Long: `Load the enabled schedules and execute their GEO analyses on their cron
expressions until interrupted. With --run-now a single schedule is executed
immediately instead.`,
	RunE: runScheduler,
}

func init() {
	schedulerCmd.Flags().StringVar(&runNowID, "run-now", "", "Execute one schedule by id and exit")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := connectSQL(ctx); err != nil {
		return err
	}
	if err := connectNoSQL(ctx); err != nil {
		return err
	}

	sched := scheduler.New(sqlStore, nosqlStore, analyzer)

	if runNowID != "" {
		fmt.Printf("▶️  Executing schedule %s...\n", runNowID)
		if err := sched.RunNow(ctx, runNowID); err != nil {
			return fmt.Errorf("schedule execution failed: %w", err)
		}
		fmt.Println(FormatSuccess("✅ Schedule executed"))
		return nil
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	fmt.Println(FormatSuccess("⏰ Scheduler is running, press Ctrl+C to stop"))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("\n🛑 Stopping scheduler...")
	sched.Stop()
	return nil
}
