// tictactoe serves the time-travel tic-tac-toe game to browsers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/application"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/config"
)

var flagConfig = flag.String("config", "config.yml", "Path to the YAML config file")

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	flag.Parse()

	conf, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.ListenAndRun(ctx, logger, conf); err != nil {
		logger.Error("app run failed", "error", err)
		stop()
		os.Exit(1)
	}
}
