package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/platform/apperr"
)

type contextKey string

const TxKey contextKey = "db_tx"

// Querier is the subset of pgx shared by pools, connections and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx returns a copy of ctx carrying tx.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// TxFromContext retrieves the request-scoped transaction from context.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}

// Transactor runs fn inside a single database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PoolTransactor begins transactions on a pool. A transaction already present
// in ctx is joined instead of nested, so a service call made from inside the
// request unit of work commits or rolls back with the request.
type PoolTransactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) *PoolTransactor {
	return &PoolTransactor{pool: pool}
}

func (t *PoolTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TxBeginner starts transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWork opens one transaction per request. It is committed when the
// handler returns nil with a status below 400 and rolled back otherwise.
// The response is held back until the commit succeeds; a failed commit
// discards it and surfaces as a 500.
func UnitOfWork(beginner TxBeginner, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			tx, err := beginner.Begin(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer tx.Rollback(context.WithoutCancel(ctx))

			c.SetRequest(c.Request().WithContext(WithTx(ctx, tx)))

			res := c.Response()
			buf := newBufferedWriter(res.Writer)
			res.Writer = buf
			defer func() { res.Writer = buf.ResponseWriter }()

			if err := next(c); err != nil {
				buf.flush()
				return err
			}
			if res.Status >= http.StatusBadRequest {
				buf.flush()
				return nil
			}

			if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
				logger.Error().Err(err).
					Str("path", c.Path()).
					Int("discarded_status", res.Status).
					Msg("commit request transaction")
				res.Committed = false
				res.Status = http.StatusOK
				res.Size = 0
				return apperr.Internal("could not save changes", fmt.Errorf("commit request transaction: %w", err))
			}
			buf.flush()
			return nil
		}
	}
}

// bufferedWriter collects the status, headers and body written by a handler
// so they reach the client only once flush is called.
type bufferedWriter struct {
	http.ResponseWriter
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newBufferedWriter(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, header: w.Header().Clone()}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *bufferedWriter) flush() {
	dst := w.ResponseWriter.Header()
	for k := range dst {
		if _, ok := w.header[k]; !ok {
			dst.Del(k)
		}
	}
	for k, v := range w.header {
		dst[k] = v
	}
	if !w.wroteHeader {
		return
	}
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() > 0 {
		w.ResponseWriter.Write(w.body.Bytes())
	}
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
