// Package siteconfig models the declarative configuration document of the
// project's documentation site: site identity, theme, markdown extensions,
// generator plugins and the navigation tree. The document is consumed by an
// external site generator; this package parses and validates it, it does not
// build the site.
package siteconfig

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the root of the site configuration.
type Document struct {
	SiteName        string `yaml:"site_name"`
	SiteDescription string `yaml:"site_description"`
	SiteURL         string `yaml:"site_url"`
	RepoURL         string `yaml:"repo_url"`
	RepoName        string `yaml:"repo_name"`

	Theme              Theme       `yaml:"theme"`
	MarkdownExtensions []Extension `yaml:"markdown_extensions"`
	Plugins            []Plugin    `yaml:"plugins"`
	Nav                NavTree     `yaml:"nav"`
}

// Theme selects the site theme and its appearance options.
type Theme struct {
	Name     string            `yaml:"name"`
	Logo     string            `yaml:"logo"`
	Favicon  string            `yaml:"favicon"`
	Icon     map[string]string `yaml:"icon"`
	Features []string          `yaml:"features"`
	Palette  []Palette         `yaml:"palette"`
}

// Palette is one color scheme variant of the theme.
type Palette struct {
	Scheme  string `yaml:"scheme"`
	Primary string `yaml:"primary"`
	Accent  string `yaml:"accent"`
	Media   string `yaml:"media"`
	Toggle  Toggle `yaml:"toggle"`
}

// Toggle is the UI control switching between palette variants.
type Toggle struct {
	Icon string `yaml:"icon"`
	Name string `yaml:"name"`
}

// Extension is one markdown-processing extension, optionally with options.
// In YAML an entry is either a bare name or a single-key mapping:
//
//	- admonition
//	- toc:
//	    permalink: true
type Extension struct {
	Name    string
	Options map[string]any
}

// UnmarshalYAML accepts both the scalar and the single-key mapping form.
func (e *Extension) UnmarshalYAML(node *yaml.Node) error {
	name, options, err := decodeNamedEntry(node)
	if err != nil {
		return fmt.Errorf("markdown extension: %w", err)
	}
	e.Name, e.Options = name, options
	return nil
}

// Plugin is one site-generator plugin, optionally with handler options.
type Plugin struct {
	Name    string
	Options map[string]any
}

// UnmarshalYAML accepts both the scalar and the single-key mapping form.
func (p *Plugin) UnmarshalYAML(node *yaml.Node) error {
	name, options, err := decodeNamedEntry(node)
	if err != nil {
		return fmt.Errorf("plugin: %w", err)
	}
	p.Name, p.Options = name, options
	return nil
}

// SourcePaths digs the source directories out of an API-reference plugin's
// handler options (handlers.<lang>.paths). It returns nil for other plugins.
func (p Plugin) SourcePaths() []string {
	handlers, ok := p.Options["handlers"].(map[string]any)
	if !ok {
		return nil
	}
	var out []string
	for _, raw := range handlers {
		handler, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		paths, ok := handler["paths"].([]any)
		if !ok {
			continue
		}
		for _, p := range paths {
			if s, ok := p.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// decodeNamedEntry decodes a list entry that is either a scalar name or a
// mapping with exactly one key whose value is the option block.
func decodeNamedEntry(node *yaml.Node) (string, map[string]any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return "", nil, err
		}
		if strings.TrimSpace(name) == "" {
			return "", nil, fmt.Errorf("entry name is empty")
		}
		return name, nil, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return "", nil, fmt.Errorf("entry mapping must have exactly one key, got %d", len(node.Content)/2)
		}
		var name string
		if err := node.Content[0].Decode(&name); err != nil {
			return "", nil, err
		}
		options := map[string]any{}
		if node.Content[1].Kind != 0 && node.Content[1].Tag != "!!null" {
			if err := node.Content[1].Decode(&options); err != nil {
				return "", nil, fmt.Errorf("options for %q: %w", name, err)
			}
		}
		return name, options, nil
	default:
		return "", nil, fmt.Errorf("entry must be a name or a single-key mapping (line %d)", node.Line)
	}
}

// Parse strictly decodes a site configuration document. Unknown top-level
// keys, empty input and trailing documents are errors.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("site configuration is empty")
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &doc, nil
}
