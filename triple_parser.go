package rdfsummary

import (
	"strings"

	"github.com/piprate/json-gold/ld"
)

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

// Shape tells which of the supported N-Triples line shapes a line had.
type Shape int

const (
	// ShapeUnrecognized is any line the parser does not handle.
	ShapeUnrecognized Shape = iota
	// ShapeAllURI is <s> <p> <o> .
	ShapeAllURI
	// ShapeLiteralObject is <s> <p> "text" .
	ShapeLiteralObject
)

func (s Shape) String() string {
	switch s {
	case ShapeAllURI:
		return "all-uri"
	case ShapeLiteralObject:
		return "literal-object"
	default:
		return "unrecognized"
	}
}

// RawTriple holds the fields of one recognized line. Subject, Predicate and
// URI objects are stored without angle brackets, literal objects without
// their surrounding quotes. The literal text is not unescaped.
type RawTriple struct {
	Shape     Shape
	Subject   string
	Predicate string
	Object    string
}

// IsLiteral reports whether the object is a literal.
func (t RawTriple) IsLiteral() bool {
	return t.Shape == ShapeLiteralObject
}

// Quad converts the triple into a json-gold quad in the default graph.
// Subjects and objects with a "_:" prefix become blank nodes.
func (t RawTriple) Quad() *ld.Quad {
	var object ld.Node
	if t.IsLiteral() {
		object = ld.NewLiteral(t.Object, xsdString, "")
	} else {
		object = iriOrBlank(t.Object)
	}
	return ld.NewQuad(iriOrBlank(t.Subject), ld.NewIRI(t.Predicate), object, "@default")
}

func iriOrBlank(v string) ld.Node {
	if strings.HasPrefix(v, "_:") {
		return ld.NewBlankNode(v)
	}
	return ld.NewIRI(v)
}

// ParseTriple recognizes exactly two line shapes:
//
//	<subject> <predicate> <object> .
//	<subject> <predicate> "literal text" .
//
// Everything else (blank node terms, typed or language-tagged literals,
// comments, blank lines) is reported as not a triple.
func ParseTriple(line string) (RawTriple, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	body, ok := strings.CutSuffix(line, " .")
	if !ok {
		return RawTriple{}, false
	}
	body = strings.TrimRight(body, " \t")

	subject, rest, ok := cutIRI(body)
	if !ok {
		return RawTriple{}, false
	}
	rest, ok = cutSpace(rest)
	if !ok {
		return RawTriple{}, false
	}
	predicate, rest, ok := cutIRI(rest)
	if !ok {
		return RawTriple{}, false
	}
	rest, ok = cutSpace(rest)
	if !ok {
		return RawTriple{}, false
	}

	switch {
	case strings.HasPrefix(rest, "<"):
		object, tail, ok := cutIRI(rest)
		if !ok || tail != "" {
			return RawTriple{}, false
		}
		return RawTriple{Shape: ShapeAllURI, Subject: subject, Predicate: predicate, Object: object}, true

	case strings.HasPrefix(rest, `"`):
		if len(rest) < 2 || !strings.HasSuffix(rest, `"`) || strings.HasSuffix(rest, `\"`) && !strings.HasSuffix(rest, `\\"`) {
			return RawTriple{}, false
		}
		return RawTriple{Shape: ShapeLiteralObject, Subject: subject, Predicate: predicate, Object: rest[1 : len(rest)-1]}, true
	}
	return RawTriple{}, false
}

// cutIRI splits a leading <...> term off s and returns its content.
func cutIRI(s string) (iri, rest string, ok bool) {
	if !strings.HasPrefix(s, "<") {
		return "", s, false
	}
	end := strings.IndexByte(s, '>')
	if end < 2 {
		return "", s, false
	}
	iri = s[1:end]
	if strings.ContainsAny(iri, " \t<") {
		return "", s, false
	}
	return iri, s[end+1:], true
}

// cutSpace requires and drops a run of spaces or tabs.
func cutSpace(s string) (string, bool) {
	trimmed := strings.TrimLeft(s, " \t")
	return trimmed, len(trimmed) < len(s)
}
