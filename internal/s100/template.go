package s100

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// templateNode mirrors the JSON template structure: per-group attributes
// plus nested groups.
type templateNode struct {
	Attributes map[string]any          `json:"attributes,omitempty"`
	Groups     map[string]templateNode `json:"groups,omitempty"`
}

// LoadTemplate reads a JSON product template and returns a fresh container
// pre-populated with the template's group tree and attributes. Attribute
// and group names are applied in sorted order so identical templates yield
// identical containers.
func LoadTemplate(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", path, err)
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var root templateNode
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}

	f := NewFile()
	if err := applyTemplateNode(f, f.Root(), root); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return f, nil
}

func applyTemplateNode(f *File, g *Group, node templateNode) error {
	names := make([]string, 0, len(node.Attributes))
	for name := range node.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := setTemplateAttr(g, name, node.Attributes[name]); err != nil {
			return err
		}
	}

	groupNames := make([]string, 0, len(node.Groups))
	for name := range node.Groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		childPath := name
		if g.Path() != "" {
			childPath = g.Path() + "/" + name
		}
		child, err := f.CreateGroup(childPath)
		if err != nil {
			return err
		}
		if err := applyTemplateNode(f, child, node.Groups[name]); err != nil {
			return err
		}
	}
	return nil
}

func setTemplateAttr(g *Group, name string, value any) error {
	switch v := value.(type) {
	case string:
		g.SetStringAttr(name, v)
	case json.Number:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			n, err := v.Int64()
			if err != nil {
				return fmt.Errorf("attribute %q in group %q: %w", name, g.Path(), err)
			}
			g.SetIntAttr(name, n)
			return nil
		}
		x, err := v.Float64()
		if err != nil {
			return fmt.Errorf("attribute %q in group %q: %w", name, g.Path(), err)
		}
		g.SetFloatAttr(name, x)
	default:
		return fmt.Errorf("attribute %q in group %q: unsupported template value %v", name, g.Path(), value)
	}
	return nil
}
