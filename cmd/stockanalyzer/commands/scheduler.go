package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DamiGo/StockAnalyzer/internal/scheduler"
	"github.com/DamiGo/StockAnalyzer/internal/scheduler/jobs"
)

// schedulerCmd manages the daily report schedule
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler management",
	Long: `Starts the scheduler daemon or runs a registered job immediately.

The daily_report job refreshes the proxy pool, mails the portfolio
review and mails the opportunity ranking at the strategy's report time.

Example:
  go run ./cmd/stockanalyzer scheduler start
  go run ./cmd/stockanalyzer scheduler run daily_report`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerStart,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, error) {
	app, err := initApp()
	if err != nil {
		return nil, err
	}

	location := time.Local
	if tz := app.strategy.Meta.Timezone; tz != "" {
		location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", tz, err)
		}
	}

	sched := scheduler.New(location, app.log)

	var refresher jobs.ProxyRefresher
	if app.proxies != nil {
		refresher = app.proxies
	}

	dailyReport, err := jobs.NewDailyReport(app.strategy, refresher, app.scanner, app.reviewer, app.mailer, app.log)
	if err != nil {
		return nil, err
	}
	if err := sched.AddJob(dailyReport); err != nil {
		return nil, err
	}

	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scheduler ===")

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	name := args[0]

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", name)
	if err := sched.RunNow(name); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunNow is asynchronous; poll until the run lands in history
	for {
		history, err := sched.History(name)
		if err != nil {
			return err
		}
		if latest := history.Latest(); latest != nil {
			if latest.Success {
				fmt.Printf("✅ %s completed in %.1fs\n", name, latest.Duration.Seconds())
			} else {
				fmt.Printf("❌ %s failed: %s\n", name, latest.Error)
			}
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}
