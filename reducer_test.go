package rdfsummary

import (
	"regexp"
	"testing"
)

func testCurieMap(t *testing.T) *CurieMap {
	t.Helper()
	m := NewCurieMap()
	for _, line := range []string{
		"'rdf' : 'http://www.w3.org/1999/02/22-rdf-syntax-ns#'",
		"'OBO' : 'http://purl.obolibrary.org/obo/'",
		"'GO' : 'http://purl.obolibrary.org/obo/GO_'",
		"'MGI' : 'http://www.informatics.jax.org/accession/MGI:'",
		"'NCBIGene' : 'https://www.ncbi.nlm.nih.gov/gene/'",
		"'biolink' : 'https://w3id.org/biolink/vocab/'",
		"'ENSEMBL' : 'http://identifiers.org/ensembl='",
	} {
		if !m.LoadLine(line) {
			t.Fatalf("LoadLine(%q) rejected", line)
		}
	}
	return m
}

func TestReduce(t *testing.T) {
	curies := testCurieMap(t)
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "hash_namespace", token: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", want: "rdf"},
		{name: "slash_namespace", token: "https://w3id.org/biolink/vocab/category", want: "biolink"},
		{name: "longest_namespace_wins", token: "http://purl.obolibrary.org/obo/GO_0008150", want: "GO"},
		{name: "shorter_namespace", token: "http://purl.obolibrary.org/obo/RO_0002200", want: "OBO"},
		{name: "colon_namespace", token: "http://www.informatics.jax.org/accession/MGI:97490", want: "MGI"},
		{name: "equals_namespace", token: "http://identifiers.org/ensembl=ENSG00000139618", want: "ENSEMBL"},
		{name: "nested_path", token: "https://www.ncbi.nlm.nih.gov/gene/672/extra", want: "NCBIGene"},
		{name: "exact_key", token: "http://purl.obolibrary.org/obo/", want: "OBO"},
		{name: "blank_node", token: "_:b0", want: BlankNode},
		{name: "blank_node_label", token: "_:genid-42abc", want: BlankNode},
		{name: "exception_impc", token: "https://www.mousephenotype.org/genes/MGI:12345", want: "IMPC"},
		{name: "exception_owl", token: "http://www.w3.org/2002/07/owl#Class", want: "owl"},
		{name: "exception_genid", token: "https://monarchinitiave.org/.well-known/genid/b1", want: BlankNode},
		{name: "exception_wormbase", token: "http://identifiers.org/wormbase/WBGene00000001", want: "WormBase"},
		{name: "fallback", token: "http://example.org/gene/1", want: "___example_org_gene_1"},
		{name: "fallback_urn", token: "urn:x-local:thing#1", want: "___urn_x_local_thing_1"},
		{name: "fallback_non_ascii", token: "http://example.org/a b/ü", want: "___example_org_a_b"},
		{name: "already_short", token: BlankNode, want: BlankNode},
	}

	for _, cacheSize := range []int{0, 16} {
		r := NewReducer(curies, WithReducerCacheSize(cacheSize))
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Twice, so a cached answer is also checked.
				for i := 0; i < 2; i++ {
					if got := r.Reduce(tt.token); got != tt.want {
						t.Errorf("Reduce(%q) with cache %d = %q, want %q", tt.token, cacheSize, got, tt.want)
					}
				}
			})
		}
	}
}

func TestReduceCurieMapBeatsException(t *testing.T) {
	curies := NewCurieMap()
	curies.Add("https://www.mousephenotype.org/genes/", "IMPCG")
	r := NewReducer(curies)

	if got := r.Reduce("https://www.mousephenotype.org/genes/MGI:12345"); got != "IMPCG" {
		t.Errorf("Reduce = %q, want IMPCG", got)
	}
	if got := r.Reduce("https://www.mousephenotype.org/data/phenotypes"); got != "IMPC" {
		t.Errorf("Reduce = %q, want IMPC", got)
	}
}

func TestReduceEmptyCurieMapUsesExceptions(t *testing.T) {
	r := NewReducer(NewCurieMap())
	if got := r.Reduce("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"); got != "rdf" {
		t.Errorf("Reduce(rdf:type) = %q, want rdf", got)
	}
	if got := r.Reduce("http://www.w3.org/2000/01/rdf-schema#label"); got != "rdfs" {
		t.Errorf("Reduce(rdfs:label) = %q, want rdfs", got)
	}
}

func TestReduceProperties(t *testing.T) {
	curies := testCurieMap(t)
	valid := regexp.MustCompile(`^[A-Za-z0-9_]*$`)
	inputs := []string{
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
		"http://purl.obolibrary.org/obo/GO_0008150",
		"http://example.org/gene/1",
		"http://example.org/path with spaces/and-dashes",
		"mailto:someone@example.org",
		"https://www.mousephenotype.org/",
		"_:b99",
		"",
	}

	r1 := NewReducer(curies, WithReducerCacheSize(4))
	r2 := NewReducer(curies)
	for _, in := range inputs {
		got := r1.Reduce(in)
		if again := r2.Reduce(in); again != got {
			t.Errorf("Reduce(%q) not deterministic: %q vs %q", in, got, again)
		}
		if len(got) >= len(FallbackPrefix) && got[:len(FallbackPrefix)] == FallbackPrefix {
			if !valid.MatchString(got[len(FallbackPrefix):]) {
				t.Errorf("fallback token %q for %q is not a safe identifier", got, in)
			}
		}
	}

	// A short name that is also a key reduces to itself.
	for _, e := range curies.Entries() {
		if e.Prefix != e.Short {
			continue
		}
		if got := r1.Reduce(e.Short); got != e.Short {
			t.Errorf("Reduce(%q) = %q, want fixed point", e.Short, got)
		}
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "http://example.org/gene/1", want: "___example_org_gene_1"},
		{in: "https://example.org/Gene", want: "___example_org_Gene"},
		{in: "ftp://host/a__b", want: "___host_a_b"},
		{in: "not a uri", want: "___not_a_uri"},
		{in: "1nvalid://scheme", want: "___1nvalid_scheme"},
		{in: "", want: "___"},
	}
	for _, tt := range tests {
		if got := Fallback(tt.in); got != tt.want {
			t.Errorf("Fallback(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "abc", want: "abc"},
		{in: "a-b.c", want: "a_b_c"},
		{in: "__a--b__", want: "a_b"},
		{in: "a___b", want: "a_b"},
		{in: "a - _ b", want: "a_b"},
		{in: "!!!", want: ""},
		{in: "", want: ""},
		{in: "café", want: "caf"},
	}
	for _, tt := range tests {
		if got := SafeIdentifier(tt.in); got != tt.want {
			t.Errorf("SafeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSafeIdentifier(t *testing.T) {
	for in, want := range map[string]bool{
		"___example_org_gene_1": true,
		"LITERAL":               true,
		"":                      false,
		"a-b":                   false,
		"rdf:type":              false,
	} {
		if got := IsSafeIdentifier(in); got != want {
			t.Errorf("IsSafeIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", want: "type"},
		{in: "http://purl.obolibrary.org/obo/RO_0002200", want: "RO_0002200"},
		{in: "https://w3id.org/biolink/vocab/", want: ""},
		{in: "http://example.org/ns#a/b", want: "b"},
		{in: "urn:isbn", want: "urn:isbn"},
	}
	for _, tt := range tests {
		if got := LocalName(tt.in); got != tt.want {
			t.Errorf("LocalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
