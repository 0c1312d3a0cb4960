package rdfsummary

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// BlankNode is the token every blank node (and every genid IRI) reduces to.
const BlankNode = "BNODE"

// CurieEntry maps a full namespace URI prefix to its short name.
type CurieEntry struct {
	Prefix string
	Short  string
}

// ExceptionEntry is a prefix pattern checked against the whole URI when no
// curie prefix matches.
type ExceptionEntry struct {
	Pattern string
	Short   string
}

// exceptions is checked in declaration order; the longest matching pattern wins.
var exceptions = []ExceptionEntry{
	{Pattern: "http://www.w3.org/1999/02/22-rdf-syntax-ns#", Short: "rdf"},
	{Pattern: "http://www.w3.org/2000/01/rdf-schema#", Short: "rdfs"},
	{Pattern: "http://www.w3.org/2002/07/owl#", Short: "owl"},
	{Pattern: "https://www.mousephenotype.org", Short: "IMPC"},
	{Pattern: "http://identifiers.org/wormbase", Short: "WormBase"},
	{Pattern: "https://monarchinitiave.org/.well-known/genid", Short: BlankNode},
	{Pattern: "http://monarchinitiave.org", Short: "MONARCH"},
}

// Exceptions returns a copy of the fixed exception table.
func Exceptions() []ExceptionEntry {
	out := make([]ExceptionEntry, len(exceptions))
	copy(out, exceptions)
	return out
}

// CurieMap holds the namespace URI -> short name table.
// It is filled during the mapping stage and only read afterwards, so
// concurrent lookups are safe once loading has finished.
type CurieMap struct {
	entries map[string]string
}

// NewCurieMap returns a map seeded with the BNODE fixed point.
func NewCurieMap() *CurieMap {
	return &CurieMap{entries: map[string]string{BlankNode: BlankNode}}
}

// Len returns the number of entries, including the BNODE fixed point.
func (m *CurieMap) Len() int {
	return len(m.entries)
}

// Add inserts prefix -> short. Empty values are ignored and reported as false.
func (m *CurieMap) Add(prefix, short string) bool {
	if prefix == "" || short == "" {
		return false
	}
	m.entries[prefix] = short
	return true
}

// Lookup returns the short name registered for exactly uri.
func (m *CurieMap) Lookup(uri string) (string, bool) {
	short, ok := m.entries[uri]
	return short, ok
}

// Entries returns all entries. Order is unspecified.
func (m *CurieMap) Entries() []CurieEntry {
	out := make([]CurieEntry, 0, len(m.entries))
	for prefix, short := range m.entries {
		out = append(out, CurieEntry{Prefix: prefix, Short: short})
	}
	return out
}

// ExceptionLookup matches uri against the exception table by prefix and
// returns the longest match. Equal lengths keep the entry declared first.
func (m *CurieMap) ExceptionLookup(uri string) (int, string, bool) {
	best := -1
	for i, e := range exceptions {
		if !strings.HasPrefix(uri, e.Pattern) {
			continue
		}
		if best < 0 || len(e.Pattern) > len(exceptions[best].Pattern) {
			best = i
		}
	}
	if best < 0 {
		return 0, "", false
	}
	return len(exceptions[best].Pattern), exceptions[best].Short, true
}

// LoadLine parses one mapping line of the form
//
//	'short' : 'http://example.org/ns#'
//
// and inserts it. Any other line is ignored and false is returned.
func (m *CurieMap) LoadLine(line string) bool {
	short, uri, ok := parseMappingLine(line)
	if !ok {
		return false
	}
	return m.Add(uri, short)
}

// Load reads mapping lines from r until EOF and returns how many were accepted.
func (m *CurieMap) Load(r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	accepted := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 && m.LoadLine(line) {
			accepted++
		}
		if err == io.EOF {
			return accepted, nil
		}
		if err != nil {
			return accepted, fmt.Errorf("failed to read curie map: %w", err)
		}
	}
}

// LoadYAML reads a YAML document mapping short names to URIs, the format of
// curie_map.yaml files. Entries with an empty short name or URI are skipped.
func (m *CurieMap) LoadYAML(r io.Reader) (int, error) {
	var doc map[string]string
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to decode YAML curie map: %w", err)
	}
	accepted := 0
	for short, uri := range doc {
		if m.Add(uri, short) {
			accepted++
		}
	}
	return accepted, nil
}

// parseMappingLine recognizes 'short' : 'uri' with optional surrounding whitespace.
func parseMappingLine(line string) (short, uri string, ok bool) {
	rest := strings.TrimSpace(line)

	short, rest, ok = cutQuoted(rest)
	if !ok {
		return "", "", false
	}
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t")

	uri, rest, ok = cutQuoted(rest)
	if !ok || rest != "" {
		return "", "", false
	}
	return short, uri, true
}

// cutQuoted splits a leading single-quoted string off s.
func cutQuoted(s string) (quoted, rest string, ok bool) {
	if !strings.HasPrefix(s, "'") {
		return "", s, false
	}
	end := strings.IndexByte(s[1:], '\'')
	if end < 0 {
		return "", s, false
	}
	return s[1 : end+1], s[end+2:], true
}
