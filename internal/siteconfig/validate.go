package siteconfig

import (
	"fmt"

	"github.com/mggg/votekit/internal/validate"
)

// Validate checks the document for semantic errors: unknown themes, plugins
// and extensions, malformed URLs, and navigation entries or theme assets that
// do not resolve to files under docsDir. Errors are accumulated so a single
// pass reports every problem in the document.
func (d *Document) Validate(docsDir string) error {
	v := validate.New()

	v.NotEmpty("site_name", d.SiteName)

	if d.SiteURL != "" {
		v.URL("site_url", d.SiteURL, []string{"http", "https"})
	}
	if d.RepoURL != "" {
		v.URL("repo_url", d.RepoURL, []string{"http", "https"})
	}
	if d.RepoName != "" && d.RepoURL == "" {
		v.AddError("repo_name", "repo_name is set but repo_url is missing", d.RepoName)
	}

	d.validateTheme(v, docsDir)
	d.validateExtensions(v)
	d.validatePlugins(v)
	d.validateNav(v, docsDir)

	return v.Err()
}

func (d *Document) validateTheme(v *validate.Validator, docsDir string) {
	if d.Theme.Name != "" {
		v.OneOf("theme.name", d.Theme.Name, knownThemes)
	}
	if d.Theme.Logo != "" {
		v.FileWithinRoot("theme.logo", d.Theme.Logo, docsDir)
	}
	if d.Theme.Favicon != "" {
		v.FileWithinRoot("theme.favicon", d.Theme.Favicon, docsDir)
	}

	for i, p := range d.Theme.Palette {
		field := fmt.Sprintf("theme.palette[%d]", i)
		v.OneOf(field+".scheme", p.Scheme, paletteSchemes)
		// A multi-palette theme needs toggles so the reader can switch.
		if len(d.Theme.Palette) > 1 && p.Toggle.Icon == "" {
			v.AddError(field+".toggle", "toggle icon required when multiple palettes are configured", p.Scheme)
		}
	}

	seenFeatures := map[string]struct{}{}
	for _, f := range d.Theme.Features {
		if _, dup := seenFeatures[f]; dup {
			v.AddError("theme.features", fmt.Sprintf("duplicate feature %q", f), f)
		}
		seenFeatures[f] = struct{}{}
	}
}

func (d *Document) validateExtensions(v *validate.Validator) {
	seen := map[string]struct{}{}
	for i, e := range d.MarkdownExtensions {
		field := fmt.Sprintf("markdown_extensions[%d]", i)
		if !KnownExtension(e.Name) {
			v.AddError(field, fmt.Sprintf("unknown markdown extension %q", e.Name), e.Name)
			continue
		}
		if _, dup := seen[e.Name]; dup {
			v.AddError(field, fmt.Sprintf("duplicate markdown extension %q", e.Name), e.Name)
		}
		seen[e.Name] = struct{}{}
	}
}

func (d *Document) validatePlugins(v *validate.Validator) {
	seen := map[string]struct{}{}
	for i, p := range d.Plugins {
		field := fmt.Sprintf("plugins[%d]", i)
		if !KnownPlugin(p.Name) {
			v.AddError(field, fmt.Sprintf("unknown plugin %q", p.Name), p.Name)
			continue
		}
		if _, dup := seen[p.Name]; dup {
			v.AddError(field, fmt.Sprintf("duplicate plugin %q", p.Name), p.Name)
		}
		seen[p.Name] = struct{}{}

		// Source directories for API-reference handlers stay inside the repo.
		for _, src := range p.SourcePaths() {
			v.Path(field+".paths", src)
		}
	}
}

func (d *Document) validateNav(v *validate.Validator, docsDir string) {
	i := 0
	d.Nav.Walk(func(e NavEntry) {
		field := fmt.Sprintf("nav[%d]", i)
		i++
		if e.IsSection() {
			if e.Title == "" {
				v.AddError(field, "section entry has no title", "")
			}
			return
		}
		if e.Page == "" {
			v.AddError(field, "entry has neither a page nor children", e.Title)
			return
		}
		v.FileWithinRoot(field, e.Page, docsDir)
	})
}
