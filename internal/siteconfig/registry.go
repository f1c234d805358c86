package siteconfig

// Recognized names. Validation flags anything outside these sets so typos in
// the config surface before the site generator silently ignores them.

var knownThemes = []string{"material", "mkdocs", "readthedocs"}

var paletteSchemes = []string{"default", "slate"}

var knownPlugins = map[string]struct{}{
	"search":           {},
	"autorefs":         {},
	"macros":           {},
	"mkdocstrings":     {},
	"mkdocs-jupyter":   {},
	"social":           {},
	"include-markdown": {},
}

var knownExtensions = map[string]struct{}{
	"admonition":            {},
	"attr_list":             {},
	"def_list":              {},
	"footnotes":             {},
	"md_in_html":            {},
	"tables":                {},
	"toc":                   {},
	"pymdownx.arithmatex":   {},
	"pymdownx.betterem":     {},
	"pymdownx.caret":        {},
	"pymdownx.details":      {},
	"pymdownx.emoji":        {},
	"pymdownx.highlight":    {},
	"pymdownx.inlinehilite": {},
	"pymdownx.keys":         {},
	"pymdownx.mark":         {},
	"pymdownx.smartsymbols": {},
	"pymdownx.snippets":     {},
	"pymdownx.superfences":  {},
	"pymdownx.tabbed":       {},
	"pymdownx.tasklist":     {},
	"pymdownx.tilde":        {},
}

// KnownPlugin reports whether the generator ships or commonly loads the
// named plugin.
func KnownPlugin(name string) bool {
	_, ok := knownPlugins[name]
	return ok
}

// KnownExtension reports whether the named markdown extension is recognized.
func KnownExtension(name string) bool {
	_, ok := knownExtensions[name]
	return ok
}
