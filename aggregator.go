package rdfsummary

import (
	"sort"
	"strings"

	"bitbucket.org/creachadair/stringset"
)

const (
	// LiteralNode is the token every literal object reduces to.
	LiteralNode = "LITERAL"
	// literalShape is the node shape used to draw LiteralNode.
	literalShape = "record"
)

// EdgeKey identifies one summarized edge.
type EdgeKey struct {
	Subject   string
	Predicate string // "namespace:localname"
	Object    string
}

// Edge is an EdgeKey with the number of input triples that reduced to it.
type Edge struct {
	EdgeKey
	Count int64
}

// NodeAnnotation is a rendering hint for one node.
type NodeAnnotation struct {
	Node  string
	Shape string
}

// Summary is a sorted snapshot of aggregated edges and node annotations.
type Summary struct {
	Edges []Edge
	Nodes []NodeAnnotation
}

// Aggregator tallies reduced triples into weighted edges. Memory grows with
// the number of distinct edge keys, not with the number of triples.
type Aggregator struct {
	reducer *Reducer
	edges   map[EdgeKey]int64
	// annotations holds "node\x00shape" entries.
	annotations stringset.Set
	triples     int64
}

// NewAggregator creates an empty Aggregator reducing terms with reducer.
func NewAggregator(reducer *Reducer) *Aggregator {
	return &Aggregator{
		reducer:     reducer,
		edges:       make(map[EdgeKey]int64),
		annotations: stringset.New(),
	}
}

// Observe reduces one triple and increments its edge count.
func (a *Aggregator) Observe(raw RawTriple) {
	key := EdgeKey{
		Subject:   a.reducer.Reduce(raw.Subject),
		Predicate: a.reducer.Reduce(raw.Predicate) + ":" + LocalName(raw.Predicate),
	}
	if raw.IsLiteral() {
		key.Object = LiteralNode
		a.Annotate(NodeAnnotation{Node: LiteralNode, Shape: literalShape})
	} else {
		key.Object = a.reducer.Reduce(raw.Object)
	}
	a.edges[key]++
	a.triples++
}

// Add increments the count of key by n. Non-positive n is ignored.
func (a *Aggregator) Add(key EdgeKey, n int64) {
	if n <= 0 {
		return
	}
	a.edges[key] += n
	a.triples += n
}

// Annotate registers a node annotation. Registering it again is a no-op.
func (a *Aggregator) Annotate(n NodeAnnotation) {
	a.annotations.Add(n.Node + "\x00" + n.Shape)
}

// Merge adds every count and annotation of other into a.
func (a *Aggregator) Merge(other *Aggregator) {
	for key, n := range other.edges {
		a.edges[key] += n
	}
	a.annotations.Update(other.annotations)
	a.triples += other.triples
}

// MergeSummary adds a previously taken snapshot into a.
func (a *Aggregator) MergeSummary(s Summary) {
	for _, e := range s.Edges {
		a.Add(e.EdgeKey, e.Count)
	}
	for _, n := range s.Nodes {
		a.Annotate(n)
	}
}

// Count returns how many triples reduced to key.
func (a *Aggregator) Count(key EdgeKey) int64 {
	return a.edges[key]
}

// Len returns the number of distinct edges.
func (a *Aggregator) Len() int {
	return len(a.edges)
}

// Triples returns the number of triples observed, including merged ones.
func (a *Aggregator) Triples() int64 {
	return a.triples
}

// Summary returns the current state, edges sorted by key and nodes by name.
func (a *Aggregator) Summary() Summary {
	s := Summary{
		Edges: make([]Edge, 0, len(a.edges)),
		Nodes: make([]NodeAnnotation, 0, a.annotations.Len()),
	}
	for key, n := range a.edges {
		s.Edges = append(s.Edges, Edge{EdgeKey: key, Count: n})
	}
	sortEdges(s.Edges)
	for _, entry := range a.annotations.Elements() {
		node, shape, _ := strings.Cut(entry, "\x00")
		s.Nodes = append(s.Nodes, NodeAnnotation{Node: node, Shape: shape})
	}
	return s
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].EdgeKey.less(edges[j].EdgeKey)
	})
}

func (k EdgeKey) less(o EdgeKey) bool {
	if k.Subject != o.Subject {
		return k.Subject < o.Subject
	}
	if k.Predicate != o.Predicate {
		return k.Predicate < o.Predicate
	}
	return k.Object < o.Object
}
