package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/kersh1337228/goorm/internal/orm/dbconn")

// MySQLConnector opens a Conn backed by github.com/go-sql-driver/mysql.
type MySQLConnector struct{}

func (MySQLConnector) Open(ctx context.Context, cfg *Config) (Conn, error) {
	dsn := buildDSN(cfg)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbconn: open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dbconn: ping mysql at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &mysqlConn{db: db, retryMaxElapsed: cfg.RetryMaxElapsed}, nil
}

func buildDSN(cfg *Config) string {
	var userPart string
	if cfg.Password != "" {
		userPart = fmt.Sprintf("%s:%s", cfg.User, cfg.Password)
	} else {
		userPart = cfg.User
	}
	params := "parseTime=true"
	if cfg.TLS {
		params += "&tls=true"
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", userPart, cfg.Host, cfg.Port, cfg.Database, params)
}

// mysqlConn wraps *sql.DB with retry on transient errors and per-call
// OTel spans.
type mysqlConn struct {
	db              *sql.DB
	retryMaxElapsed time.Duration
}

func (c *mysqlConn) backoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.retryMaxElapsed
	return bo
}

// isRetryable reports whether err is a transient connection error worth
// retrying (stale pool connection, brief network blip, server restart).
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"driver: bad connection",
		"invalid connection",
		"broken pipe",
		"connection reset",
		"connection refused",
		"lost connection",
		"gone away",
		"i/o timeout",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *mysqlConn) withRetry(ctx context.Context, op func() error) error {
	attempts := 0
	return backoff.Retry(func() error {
		attempts++
		err := op()
		if err != nil && isRetryable(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(c.backoff(), ctx))
}

func spanSQL(q string) string {
	if len(q) > 300 {
		return q[:300] + "…"
	}
	return q
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *mysqlConn) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	ctx, span := tracer.Start(ctx, "dbconn.exec",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mysql"),
			attribute.String("db.operation", "exec"),
			attribute.String("db.statement", spanSQL(query)),
		),
	)
	var result sql.Result
	err := c.withRetry(ctx, func() error {
		var execErr error
		result, execErr = c.db.ExecContext(ctx, query, args...)
		return execErr
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *mysqlConn) QueryContext(ctx context.Context, query string, args ...any) (Cursor, error) {
	ctx, span := tracer.Start(ctx, "dbconn.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mysql"),
			attribute.String("db.operation", "query"),
			attribute.String("db.statement", spanSQL(query)),
		),
	)
	var rows *sql.Rows
	err := c.withRetry(ctx, func() error {
		var queryErr error
		rows, queryErr = c.db.QueryContext(ctx, query, args...)
		return queryErr
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *mysqlConn) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	ctx, span := tracer.Start(ctx, "dbconn.query_row",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mysql"),
			attribute.String("db.operation", "query_row"),
			attribute.String("db.statement", spanSQL(query)),
		),
	)
	var row *sql.Row
	_ = c.withRetry(ctx, func() error {
		row = c.db.QueryRowContext(ctx, query, args...)
		return nil
	})
	span.End()
	return row
}

func (c *mysqlConn) Close() error {
	return c.db.Close()
}
