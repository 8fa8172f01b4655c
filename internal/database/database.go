package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"filesmanager/internal/config"
)

// DefaultApplicationName is reported to PostgreSQL when the caller does not name itself.
const DefaultApplicationName = "filesmanager"

const pingTimeout = 5 * time.Second

// ErrInvalidConfig is returned when the database settings cannot form a DSN.
var ErrInvalidConfig = errors.New("invalid database config")

var sqlOpen = sql.Open

// BuildPostgresDSN builds a postgres:// URL from c. appName ends up in
// pg_stat_activity.application_name, which is how API and worker sessions are
// told apart on the shared metadata database.
func BuildPostgresDSN(c config.DatabaseConfig, appName string) (string, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"host", c.Host},
		{"port", c.Port},
		{"user", c.User},
		{"name", c.Name},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return "", fmt.Errorf("%w: port %q", ErrInvalidConfig, c.Port)
	}
	if appName == "" {
		appName = DefaultApplicationName
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + c.Port,
		Path:   c.Name,
		User:   url.User(c.User),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	q.Set("application_name", appName)
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// NewPostgres opens a traced pool on the pgx stdlib driver and pings it.
// The ping is bounded by ctx and by a fixed timeout, whichever ends first.
func NewPostgres(ctx context.Context, c config.DatabaseConfig, appName string) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c, appName)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	configurePool(db, c)

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

// configurePool applies the pool limits from c. Zero leaves the driver default.
func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}
