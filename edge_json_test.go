package rdfsummary

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, exampleSummary(), "example.nt", renderDate); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"example"`, `"20240305"`, `"___example_org_hasLabel:hasLabel"`, `"record"`} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteJSON output missing %s:\n%s", want, out)
		}
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if want := exampleSummary(); !reflect.DeepEqual(got, want) {
		t.Errorf("ReadJSON = %+v, want %+v", got, want)
	}
}

func TestReadJSONIgnoresUnknownFields(t *testing.T) {
	input := `{
		"generator": {"name": "other", "version": 2},
		"edges": [{"subject": "a", "predicate": "p:x", "object": "b", "count": 3, "weight": 9}],
		"nodes": []
	}`
	got, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	want := []Edge{{EdgeKey: EdgeKey{Subject: "a", Predicate: "p:x", Object: "b"}, Count: 3}}
	if !reflect.DeepEqual(got.Edges, want) {
		t.Errorf("Edges = %+v, want %+v", got.Edges, want)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not_object", input: `[1, 2]`},
		{name: "edges_not_array", input: `{"edges": {}}`},
		{name: "count_not_number", input: `{"edges": [{"subject": "a", "predicate": "p", "object": "b", "count": "3"}]}`},
		{name: "subject_not_string", input: `{"edges": [{"subject": 1}]}`},
		{name: "truncated", input: `{"edges": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Errorf("ReadJSON(%s) succeeded, want error", tt.input)
			}
		})
	}
}

func TestEdgeJSONTokens(t *testing.T) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	e := Edge{EdgeKey: EdgeKey{Subject: "s", Predicate: "rdf:type", Object: "o"}, Count: 42}
	if err := (edgeJSON{e}).MarshalJSONTo(enc); err != nil {
		t.Fatalf("MarshalJSONTo failed: %v", err)
	}
	want := `{"subject":"s","predicate":"rdf:type","object":"o","count":42}`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("edge JSON = %s, want %s", got, want)
	}
}
