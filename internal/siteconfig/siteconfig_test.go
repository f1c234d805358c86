package siteconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mggg/votekit/internal/validate"
)

const sampleConfig = `
site_name: VoteKit
site_description: Ranked-ballot election analysis.
repo_url: https://github.com/mggg/VoteKit
repo_name: mggg/VoteKit
theme:
  name: material
  logo: assets/logo.png
  palette:
    - scheme: default
      primary: indigo
      toggle:
        icon: material/brightness-7
        name: Switch to dark mode
    - scheme: slate
      primary: indigo
      toggle:
        icon: material/brightness-4
        name: Switch to light mode
  features:
    - navigation.tabs
    - content.code.copy
markdown_extensions:
  - admonition
  - pymdownx.superfences
  - toc:
      permalink: true
plugins:
  - search
  - mkdocstrings:
      handlers:
        python:
          paths: [src]
nav:
  - Home: index.md
  - Guide:
      - Ballots: guide/ballots.md
      - Elections: guide/elections.md
  - API Reference: api.md
`

func TestParseSampleConfig(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "VoteKit", doc.SiteName)
	assert.Equal(t, "https://github.com/mggg/VoteKit", doc.RepoURL)
	assert.Equal(t, "material", doc.Theme.Name)

	require.Len(t, doc.Theme.Palette, 2)
	assert.Equal(t, "default", doc.Theme.Palette[0].Scheme)
	assert.Equal(t, "slate", doc.Theme.Palette[1].Scheme)
	assert.Equal(t, "Switch to light mode", doc.Theme.Palette[1].Toggle.Name)

	require.Len(t, doc.MarkdownExtensions, 3)
	assert.Equal(t, "admonition", doc.MarkdownExtensions[0].Name)
	assert.Nil(t, doc.MarkdownExtensions[0].Options)
	assert.Equal(t, "toc", doc.MarkdownExtensions[2].Name)
	assert.Equal(t, true, doc.MarkdownExtensions[2].Options["permalink"])

	require.Len(t, doc.Plugins, 2)
	assert.Equal(t, []string{"src"}, doc.Plugins[1].SourcePaths())
	assert.Nil(t, doc.Plugins[0].SourcePaths())
}

func TestParseNav(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	require.Len(t, doc.Nav, 3)
	assert.Equal(t, "Home", doc.Nav[0].Title)
	assert.Equal(t, "index.md", doc.Nav[0].Page)
	assert.False(t, doc.Nav[0].IsSection())

	guide := doc.Nav[1]
	assert.True(t, guide.IsSection())
	assert.Equal(t, "Guide", guide.Title)
	require.Len(t, guide.Children, 2)
	assert.Equal(t, "guide/ballots.md", guide.Children[0].Page)

	assert.Equal(t,
		[]string{"index.md", "guide/ballots.md", "guide/elections.md", "api.md"},
		doc.Nav.Pages())
}

func TestParseUntitledNavEntry(t *testing.T) {
	doc, err := Parse(strings.NewReader("site_name: x\nnav:\n  - index.md\n"))
	require.NoError(t, err)
	require.Len(t, doc.Nav, 1)
	assert.Equal(t, "index.md", doc.Nav[0].Page)
	assert.Empty(t, doc.Nav[0].Title)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: "empty",
		},
		{
			name:    "unknown top-level key",
			input:   "site_name: x\nsiteurl: y\n",
			wantErr: "strict config parse error",
		},
		{
			name:    "multiple documents",
			input:   "site_name: x\n---\nsite_name: y\n",
			wantErr: "multiple documents",
		},
		{
			name:    "multi-key plugin entry",
			input:   "plugins:\n  - search: {}\n    macros: {}\n",
			wantErr: "exactly one key",
		},
		{
			name:    "nav entry of wrong kind",
			input:   "nav:\n  - [index.md]\n",
			wantErr: "nav entry",
		},
		{
			name:    "empty extension name",
			input:   "markdown_extensions:\n  - \"\"\n",
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// docsFixture lays out a docs tree matching sampleConfig's references.
func docsFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range []string{"index.md", "api.md", "guide/ballots.md", "guide/elections.md", "assets/logo.png"} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o600))
	}
	return dir
}

func TestValidateSampleConfig(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	require.NoError(t, doc.Validate(docsFixture(t)))
}

func TestValidateAccumulatesErrors(t *testing.T) {
	docs := docsFixture(t)

	doc := &Document{
		SiteName: "",
		RepoURL:  "ftp://example.com/repo",
		Theme: Theme{
			Name:    "solarized",
			Palette: []Palette{{Scheme: "midnight"}},
		},
		MarkdownExtensions: []Extension{{Name: "admonition"}, {Name: "admonition"}, {Name: "wavedrom"}},
		Plugins:            []Plugin{{Name: "minify"}},
		Nav:                NavTree{{Title: "Missing", Page: "missing.md"}},
	}

	err := doc.Validate(docs)
	require.Error(t, err)

	var verr validate.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "site_name")
	assert.Contains(t, fields, "repo_url")
	assert.Contains(t, fields, "theme.name")
	assert.Contains(t, fields, "theme.palette[0].scheme")
	assert.Contains(t, fields, "markdown_extensions[1]")
	assert.Contains(t, fields, "markdown_extensions[2]")
	assert.Contains(t, fields, "plugins[0]")
	assert.Contains(t, fields, "nav[0]")
}

func TestValidateNavEscape(t *testing.T) {
	docs := docsFixture(t)
	doc := &Document{
		SiteName: "x",
		Nav:      NavTree{{Title: "Evil", Page: "../outside.md"}},
	}

	err := doc.Validate(docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestValidatePluginSourcePath(t *testing.T) {
	doc := &Document{
		SiteName: "x",
		Plugins: []Plugin{{
			Name: "mkdocstrings",
			Options: map[string]any{
				"handlers": map[string]any{
					"python": map[string]any{"paths": []any{"/etc"}},
				},
			},
		}},
	}

	err := doc.Validate(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugins[0].paths")
}
