package rdfsummary

import (
	"fmt"
	"io"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// edgeJSON is a wrapper around Edge that implements json.MarshalerTo and
// json.UnmarshalerFrom as {"subject":..,"predicate":..,"object":..,"count":n}.
type edgeJSON struct {
	Edge
}

// nodeJSON serializes a NodeAnnotation as {"node":..,"shape":..}.
type nodeJSON struct {
	NodeAnnotation
}

var (
	_ json.MarshalerTo     = edgeJSON{}
	_ json.UnmarshalerFrom = (*edgeJSON)(nil)
	_ json.MarshalerTo     = nodeJSON{}
	_ json.UnmarshalerFrom = (*nodeJSON)(nil)
)

// MarshalJSONTo implements json.MarshalerTo for edgeJSON.
func (ej edgeJSON) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, tok := range []jsontext.Token{
		jsontext.String("subject"), jsontext.String(ej.Subject),
		jsontext.String("predicate"), jsontext.String(ej.Predicate),
		jsontext.String("object"), jsontext.String(ej.Object),
		jsontext.String("count"), jsontext.Int(ej.Count),
	} {
		if err := enc.WriteToken(tok); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// UnmarshalJSONFrom implements json.UnmarshalerFrom for edgeJSON.
func (ej *edgeJSON) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	return readObject(dec, func(name string) error {
		switch name {
		case "subject":
			return readString(dec, &ej.Subject)
		case "predicate":
			return readString(dec, &ej.Predicate)
		case "object":
			return readString(dec, &ej.Object)
		case "count":
			tok, err := dec.ReadToken()
			if err != nil {
				return err
			}
			if tok.Kind() != '0' {
				return fmt.Errorf("expected number for count, got %v", tok.Kind())
			}
			ej.Count = tok.Int()
			return nil
		default:
			return dec.SkipValue()
		}
	})
}

// MarshalJSONTo implements json.MarshalerTo for nodeJSON.
func (nj nodeJSON) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, tok := range []jsontext.Token{
		jsontext.String("node"), jsontext.String(nj.Node),
		jsontext.String("shape"), jsontext.String(nj.Shape),
	} {
		if err := enc.WriteToken(tok); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// UnmarshalJSONFrom implements json.UnmarshalerFrom for nodeJSON.
func (nj *nodeJSON) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	return readObject(dec, func(name string) error {
		switch name {
		case "node":
			return readString(dec, &nj.Node)
		case "shape":
			return readString(dec, &nj.Shape)
		default:
			return dec.SkipValue()
		}
	})
}

// WriteJSON writes s as a single JSON document:
//
//	{"title": "...", "date": "YYYYMMDD", "edges": [...], "nodes": [...]}
func WriteJSON(w io.Writer, s Summary, titleSource string, ts time.Time) error {
	enc := jsontext.NewEncoder(w, jsontext.WithIndent("  "))
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, tok := range []jsontext.Token{
		jsontext.String("title"), jsontext.String(TitleName(titleSource)),
		jsontext.String("date"), jsontext.String(ts.Format("20060102")),
		jsontext.String("edges"), jsontext.BeginArray,
	} {
		if err := enc.WriteToken(tok); err != nil {
			return err
		}
	}
	for _, e := range s.Edges {
		if err := (edgeJSON{e}).MarshalJSONTo(enc); err != nil {
			return fmt.Errorf("failed to marshal edge: %w", err)
		}
	}
	if err := enc.WriteToken(jsontext.EndArray); err != nil {
		return err
	}
	if err := enc.WriteToken(jsontext.String("nodes")); err != nil {
		return err
	}
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, n := range s.Nodes {
		if err := (nodeJSON{n}).MarshalJSONTo(enc); err != nil {
			return fmt.Errorf("failed to marshal node: %w", err)
		}
	}
	if err := enc.WriteToken(jsontext.EndArray); err != nil {
		return err
	}
	return enc.WriteToken(jsontext.EndObject)
}

// ReadJSON reads a document produced by WriteJSON back into a Summary.
// Title and date are ignored.
func ReadJSON(r io.Reader) (Summary, error) {
	var s Summary
	dec := jsontext.NewDecoder(r)
	err := readObject(dec, func(name string) error {
		switch name {
		case "edges":
			return readArray(dec, func() error {
				var ej edgeJSON
				if err := ej.UnmarshalJSONFrom(dec); err != nil {
					return err
				}
				s.Edges = append(s.Edges, ej.Edge)
				return nil
			})
		case "nodes":
			return readArray(dec, func() error {
				var nj nodeJSON
				if err := nj.UnmarshalJSONFrom(dec); err != nil {
					return err
				}
				s.Nodes = append(s.Nodes, nj.NodeAnnotation)
				return nil
			})
		default:
			return dec.SkipValue()
		}
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	sortEdges(s.Edges)
	return s, nil
}

// readObject consumes a JSON object, calling field for each member name.
// field must consume the member value.
func readObject(dec *jsontext.Decoder, field func(name string) error) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("expected JSON object start '{', got %v", tok.Kind())
	}
	for dec.PeekKind() != '}' {
		nameTok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		if err := field(nameTok.String()); err != nil {
			return fmt.Errorf("field %q: %w", nameTok.String(), err)
		}
	}
	_, err = dec.ReadToken()
	return err
}

// readArray consumes a JSON array, calling elem once per element.
func readArray(dec *jsontext.Decoder, elem func() error) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '[' {
		return fmt.Errorf("expected JSON array start '[', got %v", tok.Kind())
	}
	for dec.PeekKind() != ']' {
		if err := elem(); err != nil {
			return err
		}
	}
	_, err = dec.ReadToken()
	return err
}

func readString(dec *jsontext.Decoder, dst *string) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '"' {
		return fmt.Errorf("expected string, got %v", tok.Kind())
	}
	*dst = tok.String()
	return nil
}
