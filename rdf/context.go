package rdf

// SummaryContext returns the JSON-LD context used to compact summary
// documents. Summary properties become bare terms under @vocab and the RDF
// reification vocabulary is reachable through the rdf prefix.
func SummaryContext() map[string]interface{} {
	return map[string]interface{}{
		"@vocab": SummaryNamespace,
		"rdf":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"xsd":    "http://www.w3.org/2001/XMLSchema#",

		"count": SummaryCount,
		"shape": SummaryShape,
	}
}
