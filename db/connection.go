package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"counsellor-console/config"
	"counsellor-console/logger"
)

// Supported audit drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the audit database named by the config and creates its tables.
// It returns nil, nil when auditing is disabled.
func Open(cfg *config.Config) (*sql.DB, error) {
	var dsn string
	switch cfg.AuditDriver {
	case "":
		logger.Info("Audit store is disabled (AUDIT_DRIVER is empty)")
		return nil, nil
	case DriverPostgres:
		dsn = cfg.GetDBConnString()
	case DriverSQLite:
		dsn = cfg.SQLitePath
	default:
		return nil, fmt.Errorf("unknown audit driver %q", cfg.AuditDriver)
	}
	return OpenDriver(cfg.AuditDriver, dsn)
}

// OpenDriver opens driver/dsn, pings it and creates the audit tables.
func OpenDriver(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if driver == DriverSQLite {
		// one writer at a time
		conn.SetMaxOpenConns(1)
	}

	if err := createTables(conn, driver); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	logger.Info("✓ Audit store connected (driver=%s)", driver)
	return conn, nil
}

func createTables(conn *sql.DB, driver string) error {
	timestampType := "TIMESTAMPTZ"
	if driver == DriverSQLite {
		timestampType = "TIMESTAMP"
	}

	attemptTable := `
	CREATE TABLE IF NOT EXISTS reassignment_attempts (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		student_ids TEXT NOT NULL,
		course_id TEXT,
		from_counsellor_id TEXT,
		to_counsellor_id TEXT NOT NULL,
		records_updated INTEGER DEFAULT 0,
		succeeded BOOLEAN NOT NULL,
		error_message TEXT,
		created_at ` + timestampType + ` NOT NULL
	);`

	attemptIndex := `
	CREATE INDEX IF NOT EXISTS idx_reassignment_attempts_created
		ON reassignment_attempts (created_at DESC);`

	if _, err := conn.Exec(attemptTable); err != nil {
		return fmt.Errorf("error creating reassignment_attempts table: %w", err)
	}
	if _, err := conn.Exec(attemptIndex); err != nil {
		return fmt.Errorf("error creating reassignment_attempts index: %w", err)
	}
	return nil
}
