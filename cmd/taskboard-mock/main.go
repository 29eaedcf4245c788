package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/mockserver"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", ":3000", "listen address")
	dbPath := flag.String("db", "db.json", "JSON database file (empty keeps data in memory)")
	debug := flag.Bool("debug", false, "log every request")
	flag.Parse()

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	db, err := mockserver.OpenDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskboard-mock: %v\n", err)
		return 1
	}
	srv := mockserver.New(db, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(*addr) }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "taskboard-mock: %v\n", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "taskboard-mock: shutdown: %v\n", err)
		return 1
	}
	return 0
}
