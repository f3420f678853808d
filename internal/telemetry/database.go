package telemetry

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OpenDB opens an instrumented postgres handle whose connections all use
// the given schemas as search_path, and registers connection pool metrics.
func OpenDB(dsn string, schemas ...string) (*sql.DB, error) {
	if len(schemas) > 0 {
		var err error
		dsn, err = WithSearchPath(dsn, schemas...)
		if err != nil {
			return nil, err
		}
	}

	db, err := otelsql.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, err
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemPostgreSQL)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register db stats metrics: %w", err)
	}

	return db, nil
}

// WithSearchPath adds search_path as a connection runtime parameter to a
// URL or key=value postgres DSN.
func WithSearchPath(dsn string, schemas ...string) (string, error) {
	path := strings.Join(schemas, ",")

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse postgres url: %w", err)
		}
		q := u.Query()
		q.Set("search_path", path)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	return strings.TrimSpace(dsn + " search_path='" + path + "'"), nil
}
