package main

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"statistics"
)

func existsTestRun(ctx context.Context, db *sql.DB, id int64) bool {
	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM test_runs WHERE id = $1)", id).Scan(&exists)
	return err == nil && exists
}

func fetchTaskWindow(ctx context.Context, db *sql.DB, testRunID int64) (int, int, error) {
	const q = `
SELECT tasks.page, tasks.per_page
FROM tasks
JOIN handlers ON handlers.task_id = tasks.id
JOIN test_runs ON test_runs.handler_id = handlers.id
WHERE test_runs.id = $1
LIMIT 1`

	var page sql.NullInt64
	var perPage sql.NullInt64
	err := db.QueryRowContext(ctx, q, testRunID).Scan(&page, &perPage)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, err
	}

	pg := normalizePositiveInt(page.Int64, 1)
	pp := normalizePositiveInt(perPage.Int64, 1)
	return pg, pp, nil
}

func fetchSamples(ctx context.Context, db *sql.DB, page, perPage int) ([]float64, error) {
	limit, offset := windowLimitOffset(page, perPage)

	rows, err := db.QueryContext(ctx, "SELECT value FROM samples ORDER BY id ASC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	values := make([]float64, 0, limit)
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			values = append(values, v.Float64)
		}
	}
	return values, rows.Err()
}

func windowLimitOffset(page, perPage int) (limit, offset int) {
	pp := perPage
	if pp <= 0 {
		pp = 1
	}
	pg := page
	if pg <= 0 {
		pg = 1
	}
	return pp, (pg - 1) * pp
}

func normalizePositiveInt(value int64, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return int(value)
}

func insertTestResult(ctx context.Context, db *sql.DB, testRunID int64, st statistics.Summary, durationSeconds float64, memoryBytes float64) error {
	const q = `
INSERT INTO test_results
  (test_run_id, mean, median, mode, q1, q3, min, max, variance, standard_deviation, duration, memory, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
`
	_, err := db.ExecContext(ctx, q,
		testRunID,
		st.Mean, st.Median, st.Mode, st.Q1, st.Q3, st.Min, st.Max, st.Variance, st.StdDev,
		durationSeconds, memoryBytes,
	)
	return err
}
