// tictactoe-tui plays the time-travel tic-tac-toe game in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/adrg/xdg"
	"github.com/rivo/tview"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/config"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/tui"
)

const (
	cfgFile = "tictactoe/config.yml"
	logFile = "tictactoe/tui.log"
)

var flagConfig = flag.String("config", "", "Path to the YAML config file (default: search XDG config dirs)")

func main() {
	flag.Parse()

	path := *flagConfig
	if path == "" {
		// Not finding a file is fine, defaults apply.
		path, _ = xdg.SearchConfigFile(cfgFile)
	}
	conf, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	var out io.Writer = io.Discard
	if logPath, err := xdg.CacheFile(logFile); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
			defer f.Close()
			out = f
		}
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: conf.Level()}))

	app := tview.NewApplication()
	game := tui.NewGameUI(app, logger)

	frame := game.Flex()
	frame.SetBorder(true).SetTitle(" tic-tac-toe ")

	logger.Info("starting terminal UI")
	if err := app.SetRoot(frame, true).EnableMouse(true).Run(); err != nil {
		logger.Error("terminal UI failed", "error", err)
		fmt.Fprintf(os.Stderr, "tictactoe-tui: %v\n", err)
		os.Exit(1)
	}
}
