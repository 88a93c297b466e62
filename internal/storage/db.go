// Package storage holds the document store backends. SQL backends share one
// DB wrapper and differ only in dialect.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a SQL flavor. The values double as database/sql driver names.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// DB wraps a SQL database connection.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// NewSQLite opens (or creates) the SQLite file at path.
func NewSQLite(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer, a single connection prevents SQLITE_BUSY
	conn.SetMaxOpenConns(1)
	return newDB(conn, DialectSQLite)
}

// NewSQL opens a networked SQL database.
func NewSQL(dialect Dialect, dsn string) (*DB, error) {
	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return newDB(conn, dialect)
}

func newDB(conn *sql.DB, dialect Dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: dialect}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect reports which SQL flavor the connection speaks.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

const (
	tableDocuments = "documents"
	tableSettings  = "app_settings"
)

func (db *DB) migrate() error {
	var migrations []string
	for _, table := range []string{tableDocuments, tableSettings} {
		switch db.dialect {
		case DialectMySQL:
			migrations = append(migrations, `CREATE TABLE IF NOT EXISTS `+table+` (
				name VARCHAR(255) PRIMARY KEY,
				payload LONGTEXT NOT NULL,
				updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
			) CHARACTER SET utf8mb4`)
		case DialectPostgres:
			migrations = append(migrations, `CREATE TABLE IF NOT EXISTS `+table+` (
				name TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)
		default:
			migrations = append(migrations, `CREATE TABLE IF NOT EXISTS `+table+` (
				name TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`)
		}
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", strings.Join(strings.Fields(m)[:6], " "), err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var (
		sb strings.Builder
		n  int
	)
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (db *DB) upsertQuery(table string) string {
	if db.dialect == DialectMySQL {
		return `INSERT INTO ` + table + ` (name, payload, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
	}
	return db.rebind(`INSERT INTO ` + table + ` (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
}
