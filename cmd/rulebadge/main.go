package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RuleBadge/internal/config"
	"RuleBadge/internal/notifier"
	"RuleBadge/internal/recorder"
	"RuleBadge/internal/runner"
	"RuleBadge/internal/scheduler"
)

const defaultRulesPath = "config.json"

var (
	cfgPath    string
	runOnStart bool
)

var rootCmd = &cobra.Command{
	Use:   "rulebadge",
	Short: "Count rules, publish a badge and chart the history",
	Long: `rulebadge counts the rules in a JSON rules document, writes a
Shields.io endpoint badge, appends the count to the published history and
renders a trend chart of it.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run [rules.json]",
	Short: "Run one pass and exit",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOnce,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [rules.json]",
	Short: "Run passes on the configured cron schedule until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScheduled,
}

func init() {
	cfgPath = "rulebadge.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", cfgPath, "path to the YAML config file")
	scheduleCmd.Flags().BoolVar(&runOnStart, "now", os.Getenv("RUN_ON_START") == "true", "run a pass immediately on start")
	rootCmd.AddCommand(runCmd, scheduleCmd)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}

func rulesPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultRulesPath
}

// setup loads config and wires the runner. The returned cleanup closes the
// recorder.
func setup() (*config.Config, *runner.Runner, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("config validation: %w", err)
	}

	rec := openRecorder(cfg.Database.SQLitePath)

	var n runner.Notifier
	if cfg.Telegram.BotToken != "" {
		n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	r, err := runner.New(cfg, rec, n)
	if err != nil {
		rec.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := rec.Close(); err != nil {
			log.Printf("[WARN] close recorder: %v", err)
		}
	}
	return cfg, r, cleanup, nil
}

// openRecorder opens the SQLite run ledger at path and logs the last run it
// holds. An empty path or an open failure yields the noop recorder.
func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	count, at, ok, err := sr.LastRun()
	switch {
	case err != nil:
		log.Printf("[WARN] read last run: %v", err)
	case ok:
		log.Printf("[INFO] last recorded run: %d rules at %s", count, at.Format("2006-01-02 15:04:05"))
	default:
		log.Println("[INFO] run ledger is empty")
	}
	return sr
}

func runOnce(cmd *cobra.Command, args []string) error {
	_, r, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = r.Run(ctx, rulesPath(args))
	return err
}

func runScheduled(cmd *cobra.Command, args []string) error {
	cfg, r, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg.Schedule.Cron, r, rulesPath(args), runOnStart)
}

// serve runs passes on cronSpec until ctx is done. With now set, a pass runs
// before the first tick.
func serve(ctx context.Context, cronSpec string, r *runner.Runner, rules string, now bool) error {
	sched := scheduler.NewScheduler(ctx, r, rules)
	if err := sched.Register(cronSpec); err != nil {
		return err
	}
	if now {
		log.Println("[INFO] --now set, running a pass before the first tick")
		sched.RunNow()
	}
	sched.Start()

	log.Printf("[INFO] rulebadge scheduled with %q. Press Ctrl+C to stop.", cronSpec)
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	return nil
}
