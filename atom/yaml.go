package atom

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

func (d Dict) MarshalYAML() (interface{}, error) {
	m := make(map[string]Atom, len(d))
	for k, v := range d {
		m[k.String()] = v
	}
	return m, nil
}

func (d *Dict) UnmarshalYAML(n *yaml.Node) error {
	a, err := decodeNode(n)
	if err != nil {
		return err
	}
	dict, ok := a.(Dict)
	if !ok {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	*d = dict
	return nil
}

func (v *Vector) UnmarshalYAML(n *yaml.Node) error {
	a, err := decodeNode(n)
	if err != nil {
		return err
	}
	vec, ok := a.(Vector)
	if !ok {
		return fmt.Errorf("line %d: expected a sequence", n.Line)
	}
	*v = vec
	return nil
}

// Marshal encodes d as a YAML document.
func Marshal(d Dict) ([]byte, error) { return yaml.Marshal(d) }

// Unmarshal decodes a YAML document into a Dict.
func Unmarshal(data []byte) (Dict, error) {
	var d Dict
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeNode(n *yaml.Node) (Atom, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Dict{}, nil
		}
		return decodeNode(n.Content[0])
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.SequenceNode:
		v := make(Vector, 0, len(n.Content))
		for _, c := range n.Content {
			a, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			v = append(v, a)
		}
		return v, nil
	case yaml.MappingNode:
		d := make(Dict, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: dictionary keys must be scalars", k.Line)
			}
			a, err := decodeNode(v)
			if err != nil {
				return nil, err
			}
			d[NewTag(k.Value)] = a
		}
		return d, nil
	case yaml.ScalarNode:
		return decodeScalar(n)
	}
	return nil, fmt.Errorf("line %d: unexpected yaml node", n.Line)
}

func decodeScalar(n *yaml.Node) (Atom, error) {
	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			var yb bool
			if err := n.Decode(&yb); err != nil {
				return nil, err
			}
			b = yb
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case "!!null":
		return Tag{}, nil
	}
	return NewTag(n.Value), nil
}
