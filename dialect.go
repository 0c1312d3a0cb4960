package rdfsummary

import (
	"fmt"
	"strings"
)

// dialect defines an interface for generating database-specific SQL.
type dialect interface {
	// createTablesSQL returns the statements creating the 'edges' and 'node_annotations' tables.
	createTablesSQL() []string
	// batchUpsertSQL builds a multi-row upsert that adds to existing weights.
	batchUpsertSQL(numRows int) string
	// addNodeSQL returns the SQL for inserting a node annotation with conflict handling.
	addNodeSQL() string
	// weightSQL returns the SQL for reading the weight of one edge by its hash.
	weightSQL() string
}

const selectEdgesSQL = `SELECT subject, predicate, object, weight FROM edges`

const selectNodesSQL = `SELECT node, shape FROM node_annotations`

// --- SQLite Dialect ---

type sqliteDialect struct{}

func (d sqliteDialect) createTablesSQL() []string {
	return []string{
		`
		CREATE TABLE IF NOT EXISTS edges (
			edge_hash BIGINT NOT NULL,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			weight BIGINT NOT NULL,
			PRIMARY KEY(edge_hash)
		) WITHOUT ROWID;
		`,
		`
		CREATE TABLE IF NOT EXISTS node_annotations (
			node TEXT NOT NULL,
			shape TEXT NOT NULL,
			PRIMARY KEY(node, shape)
		) WITHOUT ROWID;
		`,
	}
}

func (d sqliteDialect) batchUpsertSQL(numRows int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO edges (edge_hash, subject, predicate, object, weight) VALUES ")
	for i := 0; i < numRows; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?,?,?,?,?)")
	}
	sb.WriteString(" ON CONFLICT(edge_hash) DO UPDATE SET weight = edges.weight + excluded.weight")
	return sb.String()
}

func (d sqliteDialect) addNodeSQL() string {
	return `INSERT INTO node_annotations (node, shape) VALUES (?, ?) ON CONFLICT DO NOTHING`
}

func (d sqliteDialect) weightSQL() string {
	return `SELECT COALESCE(SUM(weight), 0) FROM edges WHERE edge_hash = ?`
}

// --- PostgreSQL Dialect ---

type postgresDialect struct{}

func (d postgresDialect) createTablesSQL() []string {
	return []string{
		`
		CREATE TABLE IF NOT EXISTS edges (
			edge_hash BIGINT NOT NULL,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			weight BIGINT NOT NULL,
			PRIMARY KEY(edge_hash)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS node_annotations (
			node TEXT NOT NULL,
			shape TEXT NOT NULL,
			PRIMARY KEY(node, shape)
		);
		`,
	}
}

func (d postgresDialect) batchUpsertSQL(numRows int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO edges (edge_hash, subject, predicate, object, weight) VALUES ")
	paramIndex := 1
	for i := 0; i < numRows; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			paramIndex, paramIndex+1, paramIndex+2, paramIndex+3, paramIndex+4))
		paramIndex += 5
	}
	// A key may appear only once per statement; callers fold duplicates first.
	sb.WriteString(" ON CONFLICT (edge_hash) DO UPDATE SET weight = edges.weight + EXCLUDED.weight")
	return sb.String()
}

func (d postgresDialect) addNodeSQL() string {
	return `INSERT INTO node_annotations (node, shape) VALUES ($1, $2) ON CONFLICT (node, shape) DO NOTHING`
}

func (d postgresDialect) weightSQL() string {
	return `SELECT COALESCE(SUM(weight), 0) FROM edges WHERE edge_hash = $1`
}
