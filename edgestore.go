package rdfsummary

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"sync/atomic"

	"github.com/go-json-experiment/json/jsontext"
)

// Counter for generating unique in-memory database names
var inMemoryDBCounter atomic.Uint64

// upsertBatchSize balances statement size against the number of round trips.
const upsertBatchSize = 500

// EdgeStore persists edge tallies in a SQL database so that summaries of
// separate runs (or separate shards of one dump) add up. Adding an edge
// that is already stored increases its weight.
type EdgeStore struct {
	db *sql.DB
	// ownsDB is false when the caller handed in the connection.
	ownsDB bool
	// dialect handles SQL syntax differences between databases.
	dialect dialect
	// Prepared statements for performance
	addNodeStmt *sql.Stmt
	weightStmt  *sql.Stmt
}

// initSchemaAndStatements creates the tables and prepared statements.
func (s *EdgeStore) initSchemaAndStatements() error {
	for _, stmt := range s.dialect.createTablesSQL() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	addNodeStmt, err := s.db.Prepare(s.dialect.addNodeSQL())
	if err != nil {
		return fmt.Errorf("failed to prepare add node statement: %w", err)
	}
	s.addNodeStmt = addNodeStmt

	weightStmt, err := s.db.Prepare(s.dialect.weightSQL())
	if err != nil {
		return fmt.Errorf("failed to prepare weight statement: %w", err)
	}
	s.weightStmt = weightStmt

	return nil
}

// AddEdge adds e.Count to the stored weight of e's key.
func (s *EdgeStore) AddEdge(e Edge) error {
	return s.upsertEdges([]Edge{e})
}

// Annotate stores a node annotation. Storing it again is a no-op.
func (s *EdgeStore) Annotate(n NodeAnnotation) error {
	if _, err := s.addNodeStmt.Exec(n.Node, n.Shape); err != nil {
		return fmt.Errorf("failed to add node annotation: %w", err)
	}
	return nil
}

// AddSummary merges every edge and annotation of sum into the store.
func (s *EdgeStore) AddSummary(sum Summary) error {
	if err := s.upsertEdges(sum.Edges); err != nil {
		return err
	}
	for _, n := range sum.Nodes {
		if err := s.Annotate(n); err != nil {
			return err
		}
	}
	return nil
}

// Weight returns the stored weight of key, or 0 if the key is unknown.
func (s *EdgeStore) Weight(key EdgeKey) int64 {
	var weight int64
	if err := s.weightStmt.QueryRow(edgeHash(key)).Scan(&weight); err != nil {
		log.Printf("EdgeStore failed to execute weight statement: %v", err)
		return 0
	}
	return weight
}

// EstimateEdgeCount returns the number of distinct stored edges.
func (s *EdgeStore) EstimateEdgeCount() int {
	const query = "SELECT COUNT(*) FROM edges"
	var count int
	if err := s.db.QueryRow(query).Scan(&count); err != nil {
		log.Printf("EdgeStore failed to estimate edge count: %v", err)
		return 0
	}
	return count
}

// Summary loads the whole store as a sorted Summary.
func (s *EdgeStore) Summary() (Summary, error) {
	agg := NewAggregator(nil)

	rows, err := s.db.Query(selectEdgesSQL)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key EdgeKey
		var weight int64
		if err := rows.Scan(&key.Subject, &key.Predicate, &key.Object, &weight); err != nil {
			return Summary{}, fmt.Errorf("failed to scan edge row: %w", err)
		}
		agg.Add(key, weight)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("error iterating edge rows: %w", err)
	}

	nodeRows, err := s.db.Query(selectNodesSQL)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query node annotations: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var n NodeAnnotation
		if err := nodeRows.Scan(&n.Node, &n.Shape); err != nil {
			return Summary{}, fmt.Errorf("failed to scan node row: %w", err)
		}
		agg.Annotate(n)
	}
	if err := nodeRows.Err(); err != nil {
		return Summary{}, fmt.Errorf("error iterating node rows: %w", err)
	}

	return agg.Summary(), nil
}

// upsertEdges writes edges in multi-row upserts inside one transaction.
// Keys repeated within a batch are folded first, since PostgreSQL rejects
// an upsert touching the same row twice.
func (s *EdgeStore) upsertEdges(edges []Edge) error {
	type row struct {
		hash int64
		key  EdgeKey
	}
	weights := make(map[row]int64, len(edges))
	order := make([]row, 0, len(edges))
	for _, e := range edges {
		if e.Count <= 0 {
			continue
		}
		r := row{hash: edgeHash(e.EdgeKey), key: e.EdgeKey}
		if _, seen := weights[r]; !seen {
			order = append(order, r)
		}
		weights[r] += e.Count
	}
	if len(order) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback is a no-op if Commit succeeds

	for i := 0; i < len(order); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(order))
		batch := order[i:end]

		params := make([]any, 0, len(batch)*5)
		for _, r := range batch {
			params = append(params, r.hash, r.key.Subject, r.key.Predicate, r.key.Object, weights[r])
		}
		if _, err := tx.Exec(s.dialect.batchUpsertSQL(len(batch)), params...); err != nil {
			return fmt.Errorf("failed to execute batch upsert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WriteTo writes the store to w in the JSON format of WriteJSON, without
// title and date. It implements the io.WriterTo interface.
func (s *EdgeStore) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	sum, err := s.Summary()
	if err != nil {
		return 0, err
	}

	enc := jsontext.NewEncoder(cw)
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return cw.count, err
	}
	if err := enc.WriteToken(jsontext.String("edges")); err != nil {
		return cw.count, err
	}
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return cw.count, err
	}
	for _, e := range sum.Edges {
		if err := (edgeJSON{e}).MarshalJSONTo(enc); err != nil {
			return cw.count, err
		}
	}
	if err := enc.WriteToken(jsontext.EndArray); err != nil {
		return cw.count, err
	}
	if err := enc.WriteToken(jsontext.String("nodes")); err != nil {
		return cw.count, err
	}
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return cw.count, err
	}
	for _, n := range sum.Nodes {
		if err := (nodeJSON{n}).MarshalJSONTo(enc); err != nil {
			return cw.count, err
		}
	}
	if err := enc.WriteToken(jsontext.EndArray); err != nil {
		return cw.count, err
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return cw.count, err
	}
	return cw.count, nil
}

// ReadFrom streams a document in the WriteTo format from r and adds its
// edges to the store in batches. It implements the io.ReaderFrom interface.
func (s *EdgeStore) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	dec := jsontext.NewDecoder(cr)

	var batch []Edge
	err := readObject(dec, func(name string) error {
		switch name {
		case "edges":
			err := readArray(dec, func() error {
				var ej edgeJSON
				if err := ej.UnmarshalJSONFrom(dec); err != nil {
					return err
				}
				batch = append(batch, ej.Edge)
				if len(batch) >= upsertBatchSize {
					if err := s.upsertEdges(batch); err != nil {
						return fmt.Errorf("failed to insert batch: %w", err)
					}
					batch = batch[:0]
				}
				return nil
			})
			if err != nil {
				return err
			}
			if err := s.upsertEdges(batch); err != nil {
				return fmt.Errorf("failed to insert final batch: %w", err)
			}
			batch = batch[:0]
			return nil
		case "nodes":
			return readArray(dec, func() error {
				var nj nodeJSON
				if err := nj.UnmarshalJSONFrom(dec); err != nil {
					return err
				}
				return s.Annotate(nj.NodeAnnotation)
			})
		default:
			return dec.SkipValue()
		}
	})
	if err != nil {
		return cr.count, fmt.Errorf("failed to read edges: %w", err)
	}
	return cr.count, nil
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

// countingReader wraps an io.Reader and counts bytes read.
type countingReader struct {
	r     io.Reader
	count int64
}

func (cr *countingReader) Read(p []byte) (n int, err error) {
	n, err = cr.r.Read(p)
	cr.count += int64(n)
	return n, err
}

// Close closes the prepared statements and, if the store opened it, the
// database connection.
func (s *EdgeStore) Close() error {
	if s.addNodeStmt != nil {
		s.addNodeStmt.Close()
	}
	if s.weightStmt != nil {
		s.weightStmt.Close()
	}
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// Helper Functions

// szudzikElegantPair implements Szudzik's elegant pairing function.
// See http://szudzik.com/ElegantPairing.pdf
func szudzikElegantPair(fst, snd uint64) uint64 {
	if fst >= snd {
		return fst*fst + fst + snd
	}
	return snd*snd + fst
}

func fnvString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// edgeHash combines the FNV hashes of the three key parts. The pairing is
// order sensitive, so (a, b, c) and (c, b, a) hash differently.
func edgeHash(k EdgeKey) int64 {
	h := szudzikElegantPair(fnvString(k.Subject), fnvString(k.Predicate))
	h = szudzikElegantPair(h, fnvString(k.Object))
	// Cast to int64 for database/sql compatibility - BIGINT will interpret the bit pattern correctly
	return int64(h)
}
