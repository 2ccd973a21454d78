// cmd/backup/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/semmidev/mysqlbackup/internal/app"
	"github.com/semmidev/mysqlbackup/internal/config"
)

const exitStartupFailure = 1

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to settings file (default ./"+config.DefaultFile+")")
	once := flags.Bool("once", false, "run a single backup even when a schedule is configured")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		return exitStartupFailure
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: initialize app: %v\n", err)
		return exitStartupFailure
	}
	defer application.Shutdown()

	if application.Scheduled() && !*once {
		if err := application.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitStartupFailure
		}
		return 0
	}

	return application.RunOnce(ctx).State.ExitCode()
}
