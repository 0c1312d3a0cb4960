package rdfsummary

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver
)

// config holds configuration options for the EdgeStore.
type config struct {
	pragmas map[string]string
}

// StoreOption is a function that configures an EdgeStore.
type StoreOption func(*config)

// WithPragma sets a specific SQLite PRAGMA statement.
// For example: WithPragma("synchronous", "NORMAL").
// This will override any default value for the given PRAGMA key.
func WithPragma(key, value string) StoreOption {
	return func(c *config) {
		if c.pragmas == nil {
			c.pragmas = make(map[string]string)
		}
		c.pragmas[key] = value
	}
}

// defaultConfig returns a new config with default PRAGMA settings
// for bulk upserts.
func defaultConfig() *config {
	return &config{
		pragmas: map[string]string{
			"journal_mode": "WAL",
			"synchronous":  "NORMAL",
			"cache_size":   "-64000",
			"temp_store":   "MEMORY",
			"busy_timeout": "5000",
		},
	}
}

// NewEdgeStoreSQLite creates a new SQLite-backed EdgeStore.
// Pass ":memory:" for dbPath to create an in-memory database.
func NewEdgeStoreSQLite(dbPath string, opts ...StoreOption) (*EdgeStore, error) {
	// Each in-memory store gets its own shared-cache database so that all
	// pooled connections see the same tables.
	if dbPath == ":memory:" {
		id := inMemoryDBCounter.Add(1)
		dbPath = fmt.Sprintf("file:edgestore_%d?mode=memory&cache=shared", id)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	store, err := newSQLiteStore(db, true, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewEdgeStoreSQLiteFromDB creates an EdgeStore on an existing SQLite connection.
// The caller retains ownership of db and must close it separately.
func NewEdgeStoreSQLiteFromDB(db *sql.DB, opts ...StoreOption) (*EdgeStore, error) {
	return newSQLiteStore(db, false, opts...)
}

func newSQLiteStore(db *sql.DB, ownsDB bool, opts ...StoreOption) (*EdgeStore, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Sort keys for deterministic execution order (good for testing)
	keys := make([]string, 0, len(cfg.pragmas))
	for k := range cfg.pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pragmaSQL := fmt.Sprintf("PRAGMA %s=%s", key, cfg.pragmas[key])
		if _, err := db.Exec(pragmaSQL); err != nil {
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragmaSQL, err)
		}
	}

	store := &EdgeStore{
		db:      db,
		ownsDB:  ownsDB,
		dialect: sqliteDialect{},
	}
	if err := store.initSchemaAndStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}
