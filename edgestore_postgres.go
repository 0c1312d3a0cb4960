package rdfsummary

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// NewEdgeStorePostgreSQL creates a new PostgreSQL-backed EdgeStore.
// It accepts a standard PostgreSQL connection string.
func NewEdgeStorePostgreSQL(connStr string) (*EdgeStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)

	store := &EdgeStore{
		db:      db,
		ownsDB:  true,
		dialect: postgresDialect{},
	}

	if err := store.initSchemaAndStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema for PostgreSQL: %w", err)
	}

	return store, nil
}

// NewEdgeStorePostgreSQLFromDB creates a PostgreSQL-backed EdgeStore from an existing database connection.
// The caller retains ownership of the db connection and must close it separately.
func NewEdgeStorePostgreSQLFromDB(db *sql.DB) (*EdgeStore, error) {
	store := &EdgeStore{
		db:      db,
		ownsDB:  false,
		dialect: postgresDialect{},
	}

	if err := store.initSchemaAndStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema for PostgreSQL: %w", err)
	}

	return store, nil
}
