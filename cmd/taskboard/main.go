package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/taskboard/internal/app"
	"github.com/five82/taskboard/internal/config"
	"github.com/five82/taskboard/internal/prefs"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (default "+config.DefaultPath()+")")
	envPath := flag.String("env", "", "dotenv file with TASKBOARD_* overrides (optional, defaults to ./.env)")
	prefsPath := flag.String("prefs", "", "override preferences path (default "+prefs.DefaultPath()+")")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		EnvPath:    *envPath,
		PrefsPath:  *prefsPath,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "taskboard: %v\n", err)
		return 1
	}
	return 0
}
