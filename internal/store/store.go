package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Mode selects which of the two stores is live.
type Mode int

const (
	Production Mode = iota
	Sandbox
)

func (m Mode) String() string {
	if m == Sandbox {
		return "sandbox"
	}
	return "production"
}

// Manager owns the durable SQLite connection plus an optional in-memory
// sandbox connection and decides which one is active. The mode flag and
// the active-connection decision share one mutex so a mode switch cannot
// interleave with an in-flight store operation. Callers must resolve the
// connection through DB() on every call and never cache it across a mode
// switch.
type Manager struct {
	mu         sync.RWMutex
	durable    *gorm.DB
	sandbox    *gorm.DB
	mode       Mode
	bcryptCost int
	logger     *slog.Logger
}

// Open connects to the durable SQLite file. It refuses to operate on an
// unmigrated database rather than silently creating tables.
func Open(path string, bcryptCost int, logger *slog.Logger) (*Manager, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open durable store %s: %w", path, err)
	}

	var count int64
	err = db.Raw(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&count).Error
	if err != nil {
		return nil, fmt.Errorf("inspect durable store catalog: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("store at %s has no schema; run migrations first", path)
	}

	logger.Info("durable store opened", "path", path)

	return &Manager{
		durable:    db,
		mode:       Production,
		bcryptCost: bcryptCost,
		logger:     logger,
	}, nil
}

// DB resolves the currently active connection. The result must not be
// held across a mode switch.
func (m *Manager) DB() *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.mode == Sandbox {
		return m.sandbox
	}
	return m.durable
}

func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

func (m *Manager) IsSandbox() bool {
	return m.Mode() == Sandbox
}

// Close shuts down both connections. Sandbox contents are discarded.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sandbox != nil {
		closeDB(m.sandbox)
		m.sandbox = nil
		m.mode = Production
	}
	if m.durable != nil {
		if sqlDB, err := m.durable.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// Handle exposes parameterized statement execution against whichever
// store is active. Every method resolves the connection anew; gorm
// autocommits, giving the transaction-per-call semantics the rest of
// the system assumes.
type Handle struct {
	m *Manager
}

func NewHandle(m *Manager) *Handle {
	return &Handle{m: m}
}

// Manager returns the sandbox controller behind this handle.
func (h *Handle) Manager() *Manager {
	return h.m
}

func (h *Handle) Exec(query string, args ...interface{}) error {
	if err := h.m.DB().Exec(query, args...).Error; err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

func (h *Handle) Query(query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := h.m.DB().Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

func (h *Handle) QueryRow(query string, args ...interface{}) *sql.Row {
	return h.m.DB().Raw(query, args...).Row()
}

// InsertReturningID runs an insert and reads back the generated rowid
// inside one transaction, so concurrent inserts cannot swap ids.
func (h *Handle) InsertReturningID(query string, args ...interface{}) (int64, error) {
	var id int64
	err := h.m.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(query, args...).Error; err != nil {
			return err
		}
		return tx.Raw(`SELECT last_insert_rowid()`).Scan(&id).Error
	})
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	return id, nil
}

// Transaction groups multiple statements into one all-or-nothing unit
// against the active store.
func (h *Handle) Transaction(fn func(tx *gorm.DB) error) error {
	return h.m.DB().Transaction(fn)
}

// ListTables enumerates user tables in the active store's catalog.
func (h *Handle) ListTables() ([]string, error) {
	return listTables(h.m.DB())
}

// TableDefinitionSQL returns the DDL that created the named table.
func (h *Handle) TableDefinitionSQL(name string) (string, error) {
	return tableDefinitionSQL(h.m.DB(), name)
}

func listTables(db *gorm.DB) ([]string, error) {
	rows, err := db.Raw(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`).Rows()
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func tableDefinitionSQL(db *gorm.DB, name string) (string, error) {
	var ddl sql.NullString
	row := db.Raw(`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Row()
	if err := row.Scan(&ddl); err != nil {
		return "", fmt.Errorf("table definition for %s: %w", name, err)
	}
	if !ddl.Valid {
		return "", fmt.Errorf("table %s has no stored definition", name)
	}
	return ddl.String, nil
}
