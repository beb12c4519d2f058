package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

// Client issues bounded, authenticated-by-context calls against the store.
// Every call runs under its own timeout; errors come back normalized to
// apperr kinds.
type Client struct {
	db      *sql.DB
	timeout time.Duration

	calls    metrics.Counter
	failures metrics.Counter
	latency  metrics.Latency
}

type Stats struct {
	Calls         uint64  `json:"calls"`
	Failures      uint64  `json:"failures"`
	MeanLatencyMS float64 `json:"mean_latency_ms,omitempty"`
	MaxLatencyMS  float64 `json:"max_latency_ms,omitempty"`
}

func New(db *sql.DB, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{db: db, timeout: timeout}
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) Stats() Stats {
	lat := c.latency.Snapshot()
	return Stats{
		Calls:         c.calls.Load(),
		Failures:      c.failures.Load(),
		MeanLatencyMS: float64(lat.Mean) / float64(time.Millisecond),
		MaxLatencyMS:  float64(lat.Max) / float64(time.Millisecond),
	}
}

// Select runs a built query and calls scan once per row.
func (c *Client) Select(ctx context.Context, q *Query, scan func(*sql.Rows) error) error {
	query, args, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return c.QueryRows(ctx, query, args, scan)
}

// Count returns the exact row count for the query's filters.
func (c *Client) Count(ctx context.Context, q *Query) (int64, error) {
	query, args, err := q.CountSQL()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := c.QueryRow(ctx, query, args, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// QueryRows runs raw SQL for reads the builder cannot express (joins).
func (c *Client) QueryRows(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	timer := metrics.StartTimer()

	c.calls.Inc()
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return c.fail(ctx, "query", timer, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return c.fail(ctx, "scan", timer, err)
		}
	}
	if err := rows.Err(); err != nil {
		return c.fail(ctx, "rows", timer, err)
	}

	c.debug(ctx, "query", timer)
	return nil
}

// QueryRow runs a single-row statement (SELECT or INSERT/UPDATE ...
// RETURNING). A missing row is reported as apperr.ErrNotFound.
func (c *Client) QueryRow(ctx context.Context, query string, args []any, dest ...any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	timer := metrics.StartTimer()

	c.calls.Inc()
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		return c.fail(ctx, "query_row", timer, err)
	}

	c.debug(ctx, "query_row", timer)
	return nil
}

// Exec runs a write and returns the affected row count.
func (c *Client) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	timer := metrics.StartTimer()

	c.calls.Inc()
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, c.fail(ctx, "exec", timer, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, c.fail(ctx, "exec", timer, err)
	}

	c.debug(ctx, "exec", timer)
	return n, nil
}

// InTx runs fn inside a transaction bounded by the gateway timeout.
// Domain errors returned by fn pass through unchanged.
func (c *Client) InTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	timer := metrics.StartTimer()

	c.calls.Inc()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return c.fail(ctx, "begin", timer, err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return c.fail(ctx, "tx", timer, err)
	}
	if err := tx.Commit(); err != nil {
		return c.fail(ctx, "commit", timer, err)
	}

	c.debug(ctx, "tx", timer)
	return nil
}

func (c *Client) fail(ctx context.Context, op string, timer *metrics.Timer, err error) error {
	elapsed := timer.ObserveInto(&c.latency)
	normalized := normalize(err)
	if errors.Is(normalized, apperr.ErrRemoteUnavailable) {
		c.failures.Inc()
		logger.FromCtx(ctx).Warn("gateway call failed",
			zap.String("layer", "gateway"),
			zap.String("op", op),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
	}
	return normalized
}

func (c *Client) debug(ctx context.Context, op string, timer *metrics.Timer) {
	logger.FromCtx(ctx).Debug("gateway call",
		zap.String("layer", "gateway"),
		zap.String("op", op),
		zap.Duration("duration", timer.ObserveInto(&c.latency)),
	)
}

func normalize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: duplicate value: %w", apperr.ErrValidationFailed, err)
	case pqCode(err) == "22P02":
		return fmt.Errorf("%w: malformed identifier: %w", apperr.ErrNotFound, err)
	case pqCode(err) == "23503":
		return fmt.Errorf("%w: referenced row missing: %w", apperr.ErrNotFound, err)
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrValidationFailed),
		errors.Is(err, apperr.ErrAuthorizationDenied),
		errors.Is(err, apperr.ErrAuthenticationRequired),
		errors.Is(err, apperr.ErrRemoteUnavailable):
		return err
	default:
		return apperr.Remote(err)
	}
}

// IsUniqueViolation reports whether err carries a postgres unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == "23505"
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
