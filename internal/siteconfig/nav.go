package siteconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NavTree is the ordered navigation of the site.
type NavTree []NavEntry

// NavEntry is one navigation item: a titled page or a titled section of
// nested entries. Exactly one of Page and Children is set.
type NavEntry struct {
	Title    string
	Page     string
	Children NavTree
}

// IsSection reports whether the entry groups nested entries rather than
// pointing at a page.
func (e NavEntry) IsSection() bool { return len(e.Children) > 0 }

// UnmarshalYAML accepts the two mkdocs-style entry forms:
//
//	- index.md              # untitled page
//	- Home: index.md        # titled page
//	- Guide:                # section
//	    - guide/stv.md
func (e *NavEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&e.Page)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("nav entry mapping must have exactly one key (line %d)", node.Line)
		}
		if err := node.Content[0].Decode(&e.Title); err != nil {
			return err
		}
		value := node.Content[1]
		if value.Kind == yaml.SequenceNode {
			return value.Decode(&e.Children)
		}
		return value.Decode(&e.Page)
	default:
		return fmt.Errorf("nav entry must be a page path or a single-key mapping (line %d)", node.Line)
	}
}

// Walk visits every entry depth-first in document order.
func (t NavTree) Walk(fn func(entry NavEntry)) {
	for _, e := range t {
		fn(e)
		e.Children.Walk(fn)
	}
}

// Pages returns every page path referenced by the tree, in document order.
func (t NavTree) Pages() []string {
	var out []string
	t.Walk(func(e NavEntry) {
		if e.Page != "" {
			out = append(out, e.Page)
		}
	})
	return out
}
