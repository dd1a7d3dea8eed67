package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValidationError reports the first place a document departs from its contract.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// Validate parses raw as JSON and checks it against the node.
// Unknown properties are ignored.
func (n *Node) Validate(raw []byte) error {
	_, err := n.parse(raw)
	return err
}

func (n *Node) parse(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ValidationError{Path: "$", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return nil, &ValidationError{Path: "$", Reason: "unexpected data after JSON document"}
	}
	if err := n.check("$", value); err != nil {
		return nil, err
	}
	return value, nil
}

// Decode validates raw and unmarshals into out only the properties the contract
// declares, so extra fields the backend adds neither fail decoding nor leak through.
func (n *Node) Decode(raw []byte, out any) error {
	value, err := n.parse(raw)
	if err != nil {
		return err
	}
	projected, err := json.Marshal(n.Project(value))
	if err != nil {
		return fmt.Errorf("schema: re-encoding projected document: %w", err)
	}
	return json.Unmarshal(projected, out)
}

// Project drops every object property the contract does not declare, and nulls.
// Values that do not match the node's kind are returned unchanged.
func (n *Node) Project(value any) any {
	switch n.Kind {
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return value
		}
		kept := make(map[string]any, len(n.Properties))
		for _, p := range n.Properties {
			if v, present := obj[p.Name]; present && v != nil {
				kept[p.Name] = p.Node.Project(v)
			}
		}
		return kept
	case KindArray:
		arr, ok := value.([]any)
		if !ok || n.Items == nil {
			return value
		}
		items := make([]any, len(arr))
		for i, v := range arr {
			items[i] = n.Items.Project(v)
		}
		return items
	}
	return value
}

func (n *Node) check(path string, value any) error {
	switch n.Kind {
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return mismatch(path, n.Kind, value)
		}
		for _, p := range n.Properties {
			child := path + "." + p.Name
			v, present := obj[p.Name]
			if !present || v == nil {
				if p.Required {
					return &ValidationError{Path: child, Reason: "missing required field"}
				}
				continue
			}
			if err := p.Node.check(child, v); err != nil {
				return err
			}
		}
	case KindArray:
		arr, ok := value.([]any)
		if !ok {
			return mismatch(path, n.Kind, value)
		}
		if n.Length > 0 && len(arr) != n.Length {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected exactly %d entries, got %d", n.Length, len(arr))}
		}
		for i, v := range arr {
			if err := n.Items.check(path+"["+strconv.Itoa(i)+"]", v); err != nil {
				return err
			}
		}
	case KindString:
		if _, ok := value.(string); !ok {
			return mismatch(path, n.Kind, value)
		}
	case KindNumber, KindInteger:
		num, ok := value.(json.Number)
		if !ok {
			return mismatch(path, n.Kind, value)
		}
		f, err := num.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("number %s is not finite", num)}
		}
		if n.Kind == KindInteger && f != math.Trunc(f) {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected integer, got %s", num)}
		}
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return mismatch(path, n.Kind, value)
		}
	default:
		return &ValidationError{Path: path, Reason: fmt.Sprintf("unknown kind %q", n.Kind)}
	}
	return nil
}

func mismatch(path string, want Kind, got any) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, jsonKind(got))}
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
