package rdfsummary

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const exampleMapping = "'rdf' : 'http://www.w3.org/1999/02/22-rdf-syntax-ns#'\n"

const exampleTriples = `<http://example.org/gene/1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Gene> .
<http://example.org/gene/1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Gene> .
<http://example.org/gene/1> <http://example.org/hasLabel> "BRCA2" .
`

func TestSummarizerEndToEnd(t *testing.T) {
	s := NewSummarizer()
	if n, err := s.LoadMapping(strings.NewReader(exampleMapping)); err != nil || n != 1 {
		t.Fatalf("LoadMapping = %d, %v; want 1, nil", n, err)
	}
	stats, err := s.ReadTriples(context.Background(), strings.NewReader(exampleTriples))
	if err != nil {
		t.Fatalf("ReadTriples failed: %v", err)
	}
	if want := (Stats{Lines: 3, Triples: 3}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	var buf bytes.Buffer
	if err := s.Render(&buf, "example.nt", renderDate); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{
		"\trankdir=LR;\n",
		`___example_org_gene_1 -> ___example_org_Gene [label="rdf:type (2)"];`,
		`___example_org_gene_1 -> LITERAL [label="___example_org_hasLabel:hasLabel (1)"];`,
		"\tLITERAL [shape=record];\n",
		`label="example 20240305";`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q\n%s", want, buf.String())
		}
	}
}

func TestSummarizerTitleCarriesToday(t *testing.T) {
	s := NewSummarizer()
	if _, err := s.ReadTriples(context.Background(), strings.NewReader(exampleTriples)); err != nil {
		t.Fatalf("ReadTriples failed: %v", err)
	}
	today := time.Now()
	var buf bytes.Buffer
	if err := s.Render(&buf, "monarch.nt", today); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := `label="monarch ` + today.Format("20060102") + `";`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("output missing %q", want)
	}
}

func TestSummarizerSkipsUnsupportedLines(t *testing.T) {
	input := "# comment\n" +
		"<http://a/s> <http://a/p> \"x\"@en .\n" +
		"\n" +
		"<http://a/s> <http://a/p> <http://a/o> .\n" +
		"_:b0 <http://a/p> <http://a/o> ."
	s := NewSummarizer()
	stats, err := s.ReadTriples(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTriples failed: %v", err)
	}
	if want := (Stats{Lines: 5, Triples: 1, Skipped: 4}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if got := s.Summary(); len(got.Edges) != 1 || got.Edges[0].Count != 1 {
		t.Errorf("Summary = %+v, want one edge with count 1", got)
	}
}

func TestSummarizerMappingClosed(t *testing.T) {
	s := NewSummarizer()
	if _, err := s.ReadTriples(context.Background(), strings.NewReader("")); err != nil {
		t.Fatalf("ReadTriples failed: %v", err)
	}
	if _, err := s.LoadMapping(strings.NewReader(exampleMapping)); !errors.Is(err, ErrMappingClosed) {
		t.Errorf("LoadMapping after triples = %v, want ErrMappingClosed", err)
	}
	if _, err := s.LoadMappingYAML(strings.NewReader("rdf: http://www.w3.org/1999/02/22-rdf-syntax-ns#\n")); !errors.Is(err, ErrMappingClosed) {
		t.Errorf("LoadMappingYAML after triples = %v, want ErrMappingClosed", err)
	}
	if s.CurieMap().Len() != 1 {
		t.Errorf("curie map changed after close: Len() = %d", s.CurieMap().Len())
	}
}

func TestSummarizerContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSummarizer()
	if _, err := s.ReadTriples(ctx, strings.NewReader(exampleTriples)); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadTriples with canceled context = %v, want context.Canceled", err)
	}
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSummarizerReadFiles(t *testing.T) {
	dir := t.TempDir()
	parts := []string{
		exampleTriples,
		"<http://purl.obolibrary.org/obo/GO_1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .\n# skipped\n",
		"<http://example.org/gene/2> <http://example.org/hasLabel> \"TP53\" .\n",
	}
	paths := []string{
		filepath.Join(dir, "a.nt"),
		filepath.Join(dir, "b.nt.gz"),
		filepath.Join(dir, "c.nt"),
	}
	if err := os.WriteFile(paths[0], []byte(parts[0]), 0o644); err != nil {
		t.Fatal(err)
	}
	writeGzip(t, paths[1], parts[1])
	if err := os.WriteFile(paths[2], []byte(parts[2]), 0o644); err != nil {
		t.Fatal(err)
	}

	concurrent := NewSummarizer(WithWorkers(3), WithCacheSize(0))
	stats, err := concurrent.ReadFiles(context.Background(), paths)
	if err != nil {
		t.Fatalf("ReadFiles failed: %v", err)
	}
	if want := (Stats{Lines: 6, Triples: 5, Skipped: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	sequential := NewSummarizer()
	if _, err := sequential.ReadTriples(context.Background(), strings.NewReader(strings.Join(parts, ""))); err != nil {
		t.Fatalf("ReadTriples failed: %v", err)
	}
	if !reflect.DeepEqual(concurrent.Summary(), sequential.Summary()) {
		t.Errorf("ReadFiles summary = %+v\nwant %+v", concurrent.Summary(), sequential.Summary())
	}
}

func TestSummarizerReadFilesMissing(t *testing.T) {
	s := NewSummarizer()
	_, err := s.ReadFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.nt")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFiles(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestOpenInputBadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.nt.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenInput(path); err == nil {
		t.Error("OpenInput of a non-gzip .gz file should fail")
	}
}
