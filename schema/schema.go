// Package schema describes the structured-output contracts sent to the generation
// backend. A contract is used twice: to instruct the backend on the shape it must
// produce and to validate whatever comes back.
package schema

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
)

// Property is a named member of an object node.
type Property struct {
	Name     string
	Node     *Node
	Required bool
}

// Node describes a single value in a contract.
type Node struct {
	Kind        Kind
	Description string
	Properties  []Property // objects only, in declaration order
	Items       *Node      // arrays only
	Length      int        // fixed array length; 0 means unconstrained
}

func Object(description string, properties ...Property) *Node {
	return &Node{Kind: KindObject, Description: description, Properties: properties}
}

func Array(items *Node, length int, description string) *Node {
	return &Node{Kind: KindArray, Description: description, Items: items, Length: length}
}

func String(description string) *Node {
	return &Node{Kind: KindString, Description: description}
}

func Number(description string) *Node {
	return &Node{Kind: KindNumber, Description: description}
}

func Integer(description string) *Node {
	return &Node{Kind: KindInteger, Description: description}
}

func Bool(description string) *Node {
	return &Node{Kind: KindBoolean, Description: description}
}

// Field declares a required property.
func Field(name string, node *Node) Property {
	return Property{Name: name, Node: node, Required: true}
}

// Optional declares a property the backend may omit.
func Optional(name string, node *Node) Property {
	return Property{Name: name, Node: node}
}

// Property looks up a direct child of an object node.
func (n *Node) Property(name string) (*Node, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// Lookup follows a dotted path of property names, e.g. "current.city".
func (n *Node) Lookup(path string) (*Node, bool) {
	node := n
	for _, part := range strings.Split(path, ".") {
		if node.Kind == KindArray {
			node = node.Items
		}
		child, ok := node.Property(part)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Describe renders the contract as a field list suitable for an instruction prompt.
func (n *Node) Describe() string {
	var sb strings.Builder
	n.describe(&sb, "", true)
	return sb.String()
}

func (n *Node) describe(sb *strings.Builder, path string, required bool) {
	if path != "" {
		req := "required"
		if !required {
			req = "optional"
		}
		kind := string(n.Kind)
		if n.Kind == KindArray && n.Length > 0 {
			kind = fmt.Sprintf("array of exactly %d entries", n.Length)
		}
		fmt.Fprintf(sb, "- %s (%s, %s)", path, kind, req)
		if n.Description != "" {
			fmt.Fprintf(sb, ": %s", n.Description)
		}
		sb.WriteString("\n")
	}

	switch n.Kind {
	case KindObject:
		for _, p := range n.Properties {
			child := p.Name
			if path != "" {
				child = path + "." + p.Name
			}
			p.Node.describe(sb, child, p.Required)
		}
	case KindArray:
		if n.Items != nil && n.Items.Kind == KindObject {
			for _, p := range n.Items.Properties {
				p.Node.describe(sb, path+"[]."+p.Name, p.Required)
			}
		}
	}
}
