package rdfsummary

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// titleSuffixLen is the length of the extension dropped from a source name
// (".nt") to form the graph title.
const titleSuffixLen = 3

// TitleName derives the human readable graph name from a source path.
func TitleName(source string) string {
	base := filepath.Base(source)
	if len(base) > titleSuffixLen {
		base = base[:len(base)-titleSuffixLen]
	}
	return base
}

// Render writes s as a left-to-right Graphviz digraph. Edge and node
// statements are sorted by their rendered text so output is reproducible.
func Render(w io.Writer, s Summary, titleSource string, ts time.Time) error {
	edgeLines := make([]string, 0, len(s.Edges))
	for _, e := range s.Edges {
		edgeLines = append(edgeLines, fmt.Sprintf("%s -> %s [label=%s];",
			dotID(e.Subject), dotID(e.Object), dotString(fmt.Sprintf("%s (%d)", e.Predicate, e.Count))))
	}
	sort.Strings(edgeLines)

	nodeLines := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodeLines = append(nodeLines, fmt.Sprintf("%s [shape=%s];", dotID(n.Node), dotID(n.Shape)))
	}
	sort.Strings(nodeLines)

	bw := bufio.NewWriter(w)
	bw.WriteString("digraph rdfsummary {\n")
	bw.WriteString("\trankdir=LR;\n")
	bw.WriteString("\tcharset=\"utf-8\";\n")
	for _, line := range edgeLines {
		bw.WriteString("\t" + line + "\n")
	}
	for _, line := range nodeLines {
		bw.WriteString("\t" + line + "\n")
	}
	fmt.Fprintf(bw, "\tlabel=%s;\n", dotString(TitleName(titleSource)+" "+ts.Format("20060102")))
	bw.WriteString("}\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

// dotID makes token a valid unquoted DOT identifier.
func dotID(token string) string {
	id := token
	if !IsSafeIdentifier(id) {
		id = SafeIdentifier(id)
	}
	if id == "" || id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// dotString quotes s as a DOT string.
func dotString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
