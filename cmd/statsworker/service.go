package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cyclopcam/logs"

	"statistics"
)

type resultStore interface {
	TestRunExists(ctx context.Context, id int64) bool
	TaskWindow(ctx context.Context, testRunID int64) (page, perPage int, err error)
	Samples(ctx context.Context, page, perPage int) ([]float64, error)
	InsertResult(ctx context.Context, testRunID int64, st statistics.Summary, durationSeconds, memoryBytes float64) error
}

// pgStore is the Postgres-backed resultStore.
type pgStore struct {
	db *sql.DB
}

func (s pgStore) TestRunExists(ctx context.Context, id int64) bool {
	return existsTestRun(ctx, s.db, id)
}

func (s pgStore) TaskWindow(ctx context.Context, testRunID int64) (int, int, error) {
	return fetchTaskWindow(ctx, s.db, testRunID)
}

func (s pgStore) Samples(ctx context.Context, page, perPage int) ([]float64, error) {
	return fetchSamples(ctx, s.db, page, perPage)
}

func (s pgStore) InsertResult(ctx context.Context, testRunID int64, st statistics.Summary, durationSeconds, memoryBytes float64) error {
	return insertTestResult(ctx, s.db, testRunID, st, durationSeconds, memoryBytes)
}

func processTestRun(ctx context.Context, log logs.Log, store resultStore, testRunID int64) error {
	if !store.TestRunExists(ctx, testRunID) {
		return fmt.Errorf("test_runs id %d not found", testRunID)
	}
	page, perPage, err := store.TaskWindow(ctx, testRunID)
	if err != nil {
		return fmt.Errorf("fetch task window failed: %w", err)
	}
	values, err := store.Samples(ctx, page, perPage)
	if err != nil {
		return fmt.Errorf("fetch samples failed: %w", err)
	}

	m, err := measurePeakResidentMemory(func() (statistics.Summary, error) {
		return statistics.Summarize(values)
	})
	if err != nil {
		return fmt.Errorf("test_run %d page=%d per_page=%d: %w", testRunID, page, perPage, err)
	}
	if err := store.InsertResult(ctx, testRunID, m.Summary, m.DurationSeconds, m.PeakRSSBytes); err != nil {
		return fmt.Errorf("insert test_result failed: %w", err)
	}
	log.Infof("processed test_run=%d samples=%d duration=%.6fs memory_bytes=%.0f", testRunID, m.Summary.Count, m.DurationSeconds, m.PeakRSSBytes)
	return nil
}

type redisTarget struct {
	host     string
	password string
	dbIndex  int
}

func parseRedisURL(raw string) (redisTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return redisTarget{}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if u.Scheme == "unix" {
		return redisTarget{}, errors.New("unix sockets not supported by this worker")
	}
	if u.Host == "" {
		return redisTarget{}, fmt.Errorf("invalid REDIS_URL %q: missing host", raw)
	}
	t := redisTarget{host: u.Host}
	t.password, _ = u.User.Password()
	if path := strings.TrimPrefix(u.Path, "/"); path != "" {
		if i, err := strconv.Atoi(path); err == nil {
			t.dbIndex = i
		}
	}
	return t, nil
}

// sleepCtx waits for d, returning false if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// runService pops jobs from the Sidekiq queue until ctx is cancelled,
// reconnecting to Redis whenever the connection drops.
func runService(ctx context.Context, log logs.Log, store resultStore, cfg Config) error {
	target, err := parseRedisURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	queue := "queue:" + cfg.Queue
	log.Infof("listening on %s (%s)", queue, target.host)

	dialer := net.Dialer{Timeout: 5 * time.Second}
	for ctx.Err() == nil {
		conn, err := dialer.DialContext(ctx, "tcp", target.host)
		if err != nil {
			log.Warnf("redis connect failed: %v; retrying in 2s", err)
			sleepCtx(ctx, 2*time.Second)
			continue
		}
		// Unblock any pending BRPOP on shutdown.
		stop := context.AfterFunc(ctx, func() { conn.Close() })

		if err := consume(ctx, log, store, newRespConn(conn), target, queue); err != nil {
			log.Errorf("%v", err)
		}
		stop()
		conn.Close()
		sleepCtx(ctx, 1*time.Second)
	}
	return nil
}

func consume(ctx context.Context, log logs.Log, store resultStore, rc *respConn, target redisTarget, queue string) error {
	if target.password != "" {
		if err := rc.writeCommand("AUTH", target.password); err != nil {
			return fmt.Errorf("redis auth failed: %w", err)
		}
		if err := rc.readOK(); err != nil {
			return fmt.Errorf("redis auth failed: %w", err)
		}
	}
	if target.dbIndex != 0 {
		if err := rc.writeCommand("SELECT", strconv.Itoa(target.dbIndex)); err != nil {
			return fmt.Errorf("redis select failed: %w", err)
		}
		if err := rc.readOK(); err != nil {
			return fmt.Errorf("redis select failed: %w", err)
		}
	}

	for ctx.Err() == nil {
		if err := rc.writeCommand("BRPOP", queue, "5"); err != nil {
			return fmt.Errorf("redis write error: %w", err)
		}
		_, payload, err := rc.readBRPOP()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("redis read error: %w", err)
		}
		if payload == "" {
			continue // timeout
		}
		id, skip, err := decodeJob(payload)
		if err != nil {
			log.Warnf("%v", err)
			continue
		}
		if skip {
			log.Infof("skipping job: %s", payload)
			continue
		}
		if err := processTestRun(ctx, log, store, id); err != nil {
			log.Errorf("process error: %v", err)
		}
	}
	return nil
}
