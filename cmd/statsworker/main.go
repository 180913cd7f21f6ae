package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cyclopcam/logs"
)

func main() {
	var testRunID int64
	var service bool
	var configFile string
	flag.Int64Var(&testRunID, "test-run-id", 0, "ID of test_runs row to attach results to (omit to run service)")
	flag.BoolVar(&service, "service", false, "Run as background service listening to Sidekiq queue")
	flag.StringVar(&configFile, "config", "", "Optional YAML config file")
	flag.Parse()

	log, err := logs.NewLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	fatal := func(format string, args ...any) {
		log.Criticalf(format, args...)
		log.Close()
		os.Exit(1)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		fatal("config error: %v", err)
	}
	dsn, err := cfg.Database.DSN()
	if err != nil {
		fatal("database config error: %v", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		fatal("connect error: %v", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		fatal("database not reachable: %v", err)
	}
	store := pgStore{db: db}

	if service || (testRunID == 0 && flag.NArg() == 0) {
		if err := runService(ctx, log, store, cfg); err != nil {
			fatal("service: %v", err)
		}
		log.Infof("service stopped")
		return
	}

	if testRunID == 0 {
		var v int64
		if _, err := fmt.Sscan(flag.Arg(0), &v); err == nil {
			testRunID = v
		}
	}
	if testRunID == 0 {
		fatal("missing --test-run-id <id> argument or --service")
	}

	if err := processTestRun(ctx, log, store, testRunID); err != nil {
		fatal("%v", err)
	}
}
