package rdfsummary

import (
	"fmt"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
)

// Mangle predicates used to expose a summary as Datalog facts.
var (
	EdgePredicate      = ast.PredicateSym{Symbol: "edge", Arity: 4}
	NodeShapePredicate = ast.PredicateSym{Symbol: "node_shape", Arity: 2}
)

// Atoms returns the summary as Mangle facts:
//
//	edge("subject", "ns:local", "object", count).
//	node_shape("LITERAL", "record").
func (s Summary) Atoms() []ast.Atom {
	atoms := make([]ast.Atom, 0, len(s.Edges)+len(s.Nodes))
	for _, e := range s.Edges {
		atoms = append(atoms, ast.Atom{
			Predicate: EdgePredicate,
			Args: []ast.BaseTerm{
				ast.String(e.Subject),
				ast.String(e.Predicate),
				ast.String(e.Object),
				ast.Number(e.Count),
			},
		})
	}
	for _, n := range s.Nodes {
		atoms = append(atoms, ast.Atom{
			Predicate: NodeShapePredicate,
			Args:      []ast.BaseTerm{ast.String(n.Node), ast.String(n.Shape)},
		})
	}
	return atoms
}

// AddFacts adds the summary's facts to store and returns how many were new.
func (s Summary) AddFacts(store factstore.FactStore) int {
	added := 0
	for _, a := range s.Atoms() {
		if store.Add(a) {
			added++
		}
	}
	return added
}

// SummaryFromFacts rebuilds a Summary from edge/4 and node_shape/2 facts in store.
func SummaryFromFacts(store factstore.ReadOnlyFactStore) (Summary, error) {
	agg := NewAggregator(nil)
	err := store.GetFacts(ast.NewQuery(EdgePredicate), func(a ast.Atom) error {
		var key EdgeKey
		var err error
		if key.Subject, err = stringArg(a, 0); err != nil {
			return err
		}
		if key.Predicate, err = stringArg(a, 1); err != nil {
			return err
		}
		if key.Object, err = stringArg(a, 2); err != nil {
			return err
		}
		c, ok := a.Args[3].(ast.Constant)
		if !ok {
			return fmt.Errorf("edge count is not a constant: %v", a)
		}
		n, err := c.NumberValue()
		if err != nil {
			return fmt.Errorf("failed to get edge count: %w", err)
		}
		agg.Add(key, n)
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	err = store.GetFacts(ast.NewQuery(NodeShapePredicate), func(a ast.Atom) error {
		node, err := stringArg(a, 0)
		if err != nil {
			return err
		}
		shape, err := stringArg(a, 1)
		if err != nil {
			return err
		}
		agg.Annotate(NodeAnnotation{Node: node, Shape: shape})
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return agg.Summary(), nil
}

func stringArg(a ast.Atom, i int) (string, error) {
	c, ok := a.Args[i].(ast.Constant)
	if !ok {
		return "", fmt.Errorf("argument %d of %v is not a constant", i, a)
	}
	str, err := c.StringValue()
	if err != nil {
		return "", fmt.Errorf("failed to get string value of argument %d: %w", i, err)
	}
	return str, nil
}
