// Package rdf exports edge summaries as RDF using json-gold.
//
// Every edge becomes a reified statement carrying its weight:
//
//	_:e0 rdf:type rdf:Statement
//	_:e0 rdf:subject <summary:node/SUBJECT>
//	_:e0 rdf:predicate <summary:predicate/ns:local>
//	_:e0 rdf:object <summary:node/OBJECT>
//	_:e0 summary:count "N"^^xsd:integer
//
// and every node annotation a plain triple
//
//	<summary:node/LITERAL> summary:shape "record"
//
// The dataset can be serialized as N-Quads or JSON-LD and read back.
package rdf
