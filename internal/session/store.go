// Package session persists Variable Store snapshots in a SQL database.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang/glog"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"ember/internal/value"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("session not found")

const table = "ember_bindings"

// maxNameLen matches the VARCHAR width of the key columns.
const maxNameLen = 255

// Summary describes one saved snapshot.
type Summary struct {
	Name      string
	Bindings  int
	UpdatedAt time.Time
}

// Store reads and writes snapshots. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect dialect
}

type dialect struct {
	driver      string
	createTable string
	placeholder func(n int) string
}

var (
	questionMarks = func(int) string { return "?" }
	dollarNumbers = func(n int) string { return fmt.Sprintf("$%d", n) }
	atNumbers     = func(n int) string { return fmt.Sprintf("@p%d", n) }
)

const standardDDL = `CREATE TABLE IF NOT EXISTS ember_bindings (
	session VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	kind VARCHAR(16) NOT NULL,
	value TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (session, name)
)`

const sqlServerDDL = `IF OBJECT_ID(N'ember_bindings', N'U') IS NULL
CREATE TABLE ember_bindings (
	session NVARCHAR(255) NOT NULL,
	name NVARCHAR(255) NOT NULL,
	kind NVARCHAR(16) NOT NULL,
	value NVARCHAR(MAX) NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (session, name)
)`

// dialectFor maps a configured backend name to its database/sql driver.
func dialectFor(dbType string) (dialect, error) {
	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		return dialect{driver: "sqlite", createTable: standardDDL, placeholder: questionMarks}, nil
	case "postgres", "postgresql":
		return dialect{driver: "postgres", createTable: standardDDL, placeholder: dollarNumbers}, nil
	case "mysql":
		return dialect{driver: "mysql", createTable: standardDDL, placeholder: questionMarks}, nil
	case "sqlserver", "mssql":
		return dialect{driver: "sqlserver", createTable: sqlServerDDL, placeholder: atNumbers}, nil
	}
	return dialect{}, errors.Errorf("unsupported database type: %s", dbType)
}

// Open connects to the backend and creates the bindings table if needed.
// For sqlite, the database file's directory is created too.
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	d, err := dialectFor(dbType)
	if err != nil {
		return nil, err
	}
	if d.driver == "sqlite" {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s session store", dbType)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to ping %s session store", dbType)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if d.driver == "sqlite" {
		// One writer at a time avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create session table")
	}
	glog.V(3).Infof("session store open (%s)", d.driver)
	return &Store{db: db, dialect: d}, nil
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the snapshot called name with vars in one transaction.
// Saving an empty map removes the snapshot.
func (s *Store) Save(ctx context.Context, name string, vars map[string]value.Value) error {
	if err := validName(name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	del := fmt.Sprintf("DELETE FROM %s WHERE session = %s", table, s.dialect.placeholder(1))
	if _, err := tx.ExecContext(ctx, del, name); err != nil {
		return errors.Wrapf(err, "failed to clear session %q", name)
	}

	ins := fmt.Sprintf("INSERT INTO %s (session, name, kind, value, updated_at) VALUES (%s, %s, %s, %s, %s)",
		table, s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3),
		s.dialect.placeholder(4), s.dialect.placeholder(5))
	now := time.Now().Unix()

	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := validName(n); err != nil {
			return err
		}
		kind, text := Encode(vars[n])
		if _, err := tx.ExecContext(ctx, ins, name, n, kind, text, now); err != nil {
			return errors.Wrapf(err, "failed to save %q in session %q", n, name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit session")
	}
	glog.V(3).Infof("saved session %q with %d bindings", name, len(vars))
	return nil
}

// Load returns the bindings saved under name.
func (s *Store) Load(ctx context.Context, name string) (map[string]value.Value, error) {
	q := fmt.Sprintf("SELECT name, kind, value FROM %s WHERE session = %s", table, s.dialect.placeholder(1))
	rows, err := s.db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load session %q", name)
	}
	defer rows.Close()

	vars := make(map[string]value.Value)
	for rows.Next() {
		var n, kind, text string
		if err := rows.Scan(&n, &kind, &text); err != nil {
			return nil, errors.Wrapf(err, "failed to read session %q", name)
		}
		v, err := Decode(kind, text)
		if err != nil {
			return nil, errors.Wrapf(err, "session %q binding %q", name, n)
		}
		vars[n] = v
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read session %q", name)
	}
	if len(vars) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return vars, nil
}

// List summarises every saved snapshot, ordered by name.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	q := fmt.Sprintf("SELECT session, COUNT(*), MAX(updated_at) FROM %s GROUP BY session ORDER BY session", table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated int64
		if err := rows.Scan(&sum.Name, &sum.Bindings, &updated); err != nil {
			return nil, errors.Wrap(err, "failed to read session list")
		}
		sum.UpdatedAt = time.Unix(updated, 0)
		out = append(out, sum)
	}
	return out, errors.Wrap(rows.Err(), "failed to read session list")
}

// Delete removes the snapshot called name.
func (s *Store) Delete(ctx context.Context, name string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE session = %s", table, s.dialect.placeholder(1))
	res, err := s.db.ExecContext(ctx, q, name)
	if err != nil {
		return errors.Wrapf(err, "failed to delete session %q", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to delete session %q", name)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "%q", name)
	}
	return nil
}

func validName(name string) error {
	if name == "" {
		return errors.New("session name must not be empty")
	}
	if len(name) > maxNameLen {
		return errors.Errorf("name %q is longer than %d bytes", name[:16]+"...", maxNameLen)
	}
	return nil
}
