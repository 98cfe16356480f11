package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/odyssey-erp/odyssey-bakery/cmd/jobsctl/cli"
	"github.com/odyssey-erp/odyssey-bakery/internal/app"
)

const usage = `usage: jobsctl [flags] <command>

commands:
  trigger <job>   enqueue inventory:low_stock_scan or reports:dashboard_warmup
  stats           print default queue counters
  scheduled       list scheduled tasks
`

func main() {
	timeout := flag.Duration("timeout", 10*time.Second, "command timeout")
	size := flag.Int("size", 10, "page size for scheduled")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr, cfg.RedisDB)
	defer func() {
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
	}()

	if err := run(ctx, jobsCLI, flag.Args(), *size); err != nil {
		logger.Error("jobsctl", slog.Any("error", err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.JobsCLI, args []string, size int) error {
	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("trigger requires a job name")
		}
		info, err := c.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	case "scheduled":
		tasks, err := c.ListScheduled(ctx, size)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			fmt.Printf("%s %s next=%s\n", task.ID, task.Type, task.NextProcessAt.Format(time.RFC3339))
		}
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
