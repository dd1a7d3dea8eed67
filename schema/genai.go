package schema

import "google.golang.org/genai"

// GenAI converts the contract into the response schema understood by the Gemini API.
// Fixed-length arrays become minItems == maxItems.
func (n *Node) GenAI() *genai.Schema {
	s := &genai.Schema{Description: n.Description}

	switch n.Kind {
	case KindObject:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(n.Properties))
		for _, p := range n.Properties {
			s.Properties[p.Name] = p.Node.GenAI()
			s.PropertyOrdering = append(s.PropertyOrdering, p.Name)
			if p.Required {
				s.Required = append(s.Required, p.Name)
			}
		}
	case KindArray:
		s.Type = genai.TypeArray
		if n.Items != nil {
			s.Items = n.Items.GenAI()
		}
		if n.Length > 0 {
			s.MinItems = genai.Ptr(int64(n.Length))
			s.MaxItems = genai.Ptr(int64(n.Length))
		}
	case KindString:
		s.Type = genai.TypeString
	case KindNumber:
		s.Type = genai.TypeNumber
	case KindInteger:
		s.Type = genai.TypeInteger
	case KindBoolean:
		s.Type = genai.TypeBoolean
	}
	return s
}
