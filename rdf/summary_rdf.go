package rdf

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/piprate/json-gold/ld"

	"github.com/twinfer/rdfsummary"
)

// RDF namespace constants
const (
	RDFType      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFStatement = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Statement"
	RDFSubject   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#subject"
	RDFPredicate = "http://www.w3.org/1999/02/22-rdf-syntax-ns#predicate"
	RDFObject    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#object"

	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
)

// SummaryNamespace is the namespace of summary nodes, predicates and properties.
const SummaryNamespace = "https://github.com/twinfer/rdfsummary/vocab#"

// Summary vocabulary.
const (
	SummaryCount = SummaryNamespace + "count"
	SummaryShape = SummaryNamespace + "shape"

	nodePrefix      = SummaryNamespace + "node/"
	predicatePrefix = SummaryNamespace + "predicate/"
)

const defaultGraph = "@default"

// NodeIRI returns the IRI standing for a summary node token.
func NodeIRI(token string) string {
	return nodePrefix + url.PathEscape(token)
}

// PredicateIRI returns the IRI standing for a "ns:local" predicate label.
func PredicateIRI(label string) string {
	return predicatePrefix + url.PathEscape(label)
}

// SummaryToRDF converts a summary to an RDF dataset in the default graph.
func SummaryToRDF(s rdfsummary.Summary) *ld.RDFDataset {
	dataset := ld.NewRDFDataset()
	issuer := ld.NewIdentifierIssuer("_:e")

	var quads []*ld.Quad
	for i, e := range s.Edges {
		stmt := ld.NewBlankNode(issuer.GetId(strconv.Itoa(i)))
		quads = append(quads,
			ld.NewQuad(stmt, ld.NewIRI(RDFType), ld.NewIRI(RDFStatement), defaultGraph),
			ld.NewQuad(stmt, ld.NewIRI(RDFSubject), ld.NewIRI(NodeIRI(e.Subject)), defaultGraph),
			ld.NewQuad(stmt, ld.NewIRI(RDFPredicate), ld.NewIRI(PredicateIRI(e.Predicate)), defaultGraph),
			ld.NewQuad(stmt, ld.NewIRI(RDFObject), ld.NewIRI(NodeIRI(e.Object)), defaultGraph),
			ld.NewQuad(stmt, ld.NewIRI(SummaryCount),
				ld.NewLiteral(strconv.FormatInt(e.Count, 10), XSDInteger, ""), defaultGraph),
		)
	}
	for _, n := range s.Nodes {
		quads = append(quads, ld.NewQuad(
			ld.NewIRI(NodeIRI(n.Node)),
			ld.NewIRI(SummaryShape),
			ld.NewLiteral(n.Shape, XSDString, ""),
			defaultGraph,
		))
	}
	dataset.Graphs[defaultGraph] = quads
	return dataset
}

// RDFToSummary rebuilds a summary from a dataset produced by SummaryToRDF.
// Statements missing any of subject, predicate, object or count are skipped.
func RDFToSummary(dataset *ld.RDFDataset) (rdfsummary.Summary, error) {
	type statement struct {
		key      rdfsummary.EdgeKey
		count    int64
		fields   int
		isStmt   bool
		hasCount bool
	}
	stmts := make(map[string]*statement)
	var order []string
	agg := rdfsummary.NewAggregator(nil)

	for _, quad := range dataset.GetQuads(defaultGraph) {
		pred := nodeToString(quad.Predicate)
		if pred == SummaryShape {
			node, err := tokenFromIRI(nodeToString(quad.Subject), nodePrefix)
			if err != nil {
				return rdfsummary.Summary{}, err
			}
			agg.Annotate(rdfsummary.NodeAnnotation{Node: node, Shape: nodeToString(quad.Object)})
			continue
		}

		subj := nodeToString(quad.Subject)
		st, ok := stmts[subj]
		if !ok {
			st = &statement{}
			stmts[subj] = st
			order = append(order, subj)
		}

		var err error
		obj := nodeToString(quad.Object)
		switch pred {
		case RDFType:
			st.isStmt = st.isStmt || obj == RDFStatement
		case RDFSubject:
			st.key.Subject, err = tokenFromIRI(obj, nodePrefix)
			st.fields++
		case RDFPredicate:
			st.key.Predicate, err = tokenFromIRI(obj, predicatePrefix)
			st.fields++
		case RDFObject:
			st.key.Object, err = tokenFromIRI(obj, nodePrefix)
			st.fields++
		case SummaryCount:
			st.count, err = strconv.ParseInt(obj, 10, 64)
			st.hasCount = true
		}
		if err != nil {
			return rdfsummary.Summary{}, fmt.Errorf("statement %s: %w", subj, err)
		}
	}

	for _, subj := range order {
		st := stmts[subj]
		if !st.isStmt || st.fields != 3 || !st.hasCount {
			continue
		}
		agg.Add(st.key, st.count)
	}
	return agg.Summary(), nil
}

// WriteNQuads serializes the summary as N-Quads.
func WriteNQuads(w io.Writer, s rdfsummary.Summary) error {
	serializer := &ld.NQuadRDFSerializer{}
	out, err := serializer.Serialize(SummaryToRDF(s))
	if err != nil {
		return fmt.Errorf("failed to serialize N-Quads: %w", err)
	}
	text, ok := out.(string)
	if !ok {
		return fmt.Errorf("unexpected N-Quads serializer output type: %T", out)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("failed to write N-Quads: %w", err)
	}
	return nil
}

// ReadNQuads parses N-Quads written by WriteNQuads back into a summary.
func ReadNQuads(r io.Reader) (rdfsummary.Summary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return rdfsummary.Summary{}, fmt.Errorf("failed to read N-Quads: %w", err)
	}
	dataset, err := ld.ParseNQuads(string(data))
	if err != nil {
		return rdfsummary.Summary{}, fmt.Errorf("failed to parse N-Quads: %w", err)
	}
	return RDFToSummary(dataset)
}

// WriteJSONLD serializes the summary as JSON-LD compacted with SummaryContext.
func WriteJSONLD(w io.Writer, s rdfsummary.Summary) error {
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.UseNativeTypes = true

	expanded, err := proc.FromRDF(SummaryToRDF(s), opts)
	if err != nil {
		return fmt.Errorf("failed to convert RDF to JSON-LD: %w", err)
	}
	doc, err := proc.Compact(expanded, map[string]interface{}{"@context": SummaryContext()}, opts)
	if err != nil {
		return fmt.Errorf("failed to compact JSON-LD: %w", err)
	}
	if err := json.MarshalWrite(w, doc); err != nil {
		return fmt.Errorf("failed to write JSON-LD: %w", err)
	}
	return nil
}

// tokenFromIRI strips prefix from iri and unescapes the remainder.
func tokenFromIRI(iri, prefix string) (string, error) {
	escaped, ok := strings.CutPrefix(iri, prefix)
	if !ok {
		return "", fmt.Errorf("IRI %q is not in namespace %q", iri, prefix)
	}
	token, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("failed to unescape %q: %w", iri, err)
	}
	return token, nil
}

// nodeToString converts an RDF node to its string representation.
func nodeToString(node ld.Node) string {
	if node == nil {
		return ""
	}

	if ld.IsIRI(node) {
		return node.(ld.IRI).Value
	}

	if ld.IsLiteral(node) {
		return node.(ld.Literal).Value
	}

	if ld.IsBlankNode(node) {
		return node.(ld.BlankNode).Attribute
	}

	return ""
}
