package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravnik-mk/compliance-engine/internal/models"
)

func minimalCatalog(typ, version, title string) []byte {
	return []byte(fmt.Sprintf(`type: %s
version: %s
title: %s
bands:
  - {min_percentage: 50, key: pass, label: Pass, level: high}
  - {min_percentage: 0, key: fail, label: Fail, level: low}
categories:
  - {id: a, name: A, questions: [q1, q2]}
questions:
  - {id: q1, category: a, text: "First?", severity: high, weight: 5}
  - {id: q2, category: a, text: "Second?", severity: low, weight: 3}
`, typ, version, title))
}

func TestLoadBuiltin(t *testing.T) {
	loader := NewLoader()
	require.NoError(t, loader.LoadBuiltin())

	expected := []string{
		"employment-1", "employment-2", "employment-3", "employment-4",
		"gdpr", "general", "health-safety", "hr-operational", "marketing", "quick",
	}
	for _, typ := range expected {
		c, err := loader.Get(typ, "")
		require.NoError(t, err, typ)
		assert.Equal(t, typ, c.Type)
		assert.NotEmpty(t, c.Questions, typ)
	}

	quick, err := loader.Get("quick", "")
	require.NoError(t, err)
	assert.True(t, quick.Sampled())
	assert.Equal(t, models.PolicyLenient, quick.Policy)

	general, err := loader.Get("general", "")
	require.NoError(t, err)
	assert.False(t, general.Sampled())
	assert.Equal(t, models.PolicyStrict, general.Policy)

	marketing, err := loader.Get("marketing", "")
	require.NoError(t, err)
	for _, q := range marketing.Questions {
		assert.Equal(t, models.QuestionChoice, q.Type, q.ID)
	}
}

func TestLoadBuiltinIsIdempotent(t *testing.T) {
	loader := NewLoader()
	require.NoError(t, loader.LoadBuiltin())
	before := len(loader.List())

	require.NoError(t, loader.LoadBuiltin())
	assert.Len(t, loader.List(), before)
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse(minimalCatalog("mini", "1.0.0", "Mini"))
	require.NoError(t, err)

	assert.Equal(t, models.PolicyStrict, c.Policy)
	assert.Equal(t, 80, c.AttentionThreshold)
	assert.Equal(t, models.QuestionYesNoPartialNA, c.Questions[0].Type)
	assert.Equal(t, 0, c.CategoryIndex("a"))
	_, ok := c.Question("q2")
	assert.True(t, ok)
}

func TestGetVersionSelection(t *testing.T) {
	loader := NewLoader()
	for _, v := range []string{"1.0.0", "1.2.0", "1.2.3", "2.0.0"} {
		added, err := loader.Add(minimalCatalog("mini", v, "Mini "+v), "test")
		require.NoError(t, err)
		require.True(t, added)
	}

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"latest", "", "2.0.0"},
		{"exact", "1.2.0", "1.2.0"},
		{"tilde constraint", "~1.2", "1.2.3"},
		{"caret constraint", "^1", "1.2.3"},
		{"range constraint", "<1.1", "1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := loader.Get("mini", tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Version)
		})
	}
}

func TestGetNotFound(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Add(minimalCatalog("mini", "1.0.0", "Mini"), "test")
	require.NoError(t, err)

	for _, tc := range []struct{ typ, version string }{
		{"unknown", ""},
		{"mini", "1.0.1"},
		{"mini", "^3"},
		{"mini", "not a version"},
	} {
		_, err := loader.Get(tc.typ, tc.version)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCatalogNotFound)

		var nf *CatalogNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, tc.typ, nf.Type)
	}
}

func TestAddVersionConflict(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Add(minimalCatalog("mini", "1.0.0", "Mini"), "first.yaml")
	require.NoError(t, err)

	added, err := loader.Add(minimalCatalog("mini", "1.0.0", "Mini"), "again.yaml")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = loader.Add(minimalCatalog("mini", "1.0.0", "Changed"), "changed.yaml")
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Contains(t, err.Error(), "first.yaml")

	c, err := loader.Get("mini", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Mini", c.Title)
}

func TestValidateRejectsBrokenCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad version",
			yaml: `type: x
version: one
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}]
questions: [{id: q1, category: a, text: "Q?", severity: low, weight: 1}]`,
			want: "not a semantic version",
		},
		{
			name: "unknown category",
			yaml: `type: x
version: 1.0.0
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}]
questions: [{id: q1, category: b, text: "Q?", severity: low, weight: 1}]`,
			want: `unknown category "b"`,
		},
		{
			name: "question in two categories",
			yaml: `type: x
version: 1.0.0
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}, {id: b, name: B, questions: [q1]}]
questions: [{id: q1, category: a, text: "Q?", severity: low, weight: 1}]`,
			want: "listed in categories",
		},
		{
			name: "orphan question",
			yaml: `type: x
version: 1.0.0
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}]
questions: [{id: q1, category: a, text: "Q?", severity: low, weight: 1}, {id: q2, category: a, text: "R?", severity: low, weight: 1}]`,
			want: `"q2" is not listed in any category`,
		},
		{
			name: "missing floor band",
			yaml: `type: x
version: 1.0.0
bands: [{min_percentage: 50, key: p, label: P, level: high}]
categories: [{id: a, name: A, questions: [q1]}]
questions: [{id: q1, category: a, text: "Q?", severity: low, weight: 1}]`,
			want: "min_percentage 0 is required",
		},
		{
			name: "option points above weight",
			yaml: `type: x
version: 1.0.0
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}]
questions:
  - id: q1
    category: a
    text: "Q?"
    type: choice
    severity: low
    weight: 2
    options: [{value: a, label: A, points: 0}, {value: b, label: B, points: 3}]`,
			want: "points 3 outside 0..2",
		},
		{
			name: "zero weight",
			yaml: `type: x
version: 1.0.0
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}]
questions: [{id: q1, category: a, text: "Q?", severity: low, weight: 0}]`,
			want: "weight must be positive",
		},
		{
			name: "sample size too large",
			yaml: `type: x
version: 1.0.0
sample_size: 5
bands: [{min_percentage: 0, key: f, label: F, level: low}]
categories: [{id: a, name: A, questions: [q1]}]
questions: [{id: q1, category: a, text: "Q?", severity: low, weight: 1}]`,
			want: "sample_size 5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromDirSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), minimalCatalog("mini", "1.0.0", "Mini"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("type: [unterminated"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	loader := NewLoader()
	n, err := loader.LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = loader.LoadFromDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadStrictReportsEveryBrokenCatalog(t *testing.T) {
	fsys := fstest.MapFS{
		"data/good.yaml":       {Data: minimalCatalog("mini", "1.0.0", "Mini")},
		"data/broken.yaml":     {Data: []byte("type: [unterminated")},
		"data/bad-version.yml": {Data: minimalCatalog("mini", "not-a-version", "Mini")},
		"data/unquoted.yaml":   {Data: []byte("questions:\n  - {id: q1, text: Is it?, weight: 1}\n")},
		"data/readme.md":       {Data: []byte("ignored")},
	}

	loader := NewLoader()
	err := loader.loadStrict(fsys, "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data/broken.yaml")
	assert.Contains(t, err.Error(), "data/bad-version.yml")
	assert.Contains(t, err.Error(), "data/unquoted.yaml")
	assert.NotContains(t, err.Error(), "data/good.yaml")
	assert.NotContains(t, err.Error(), "readme.md")

	// Lenient loading of the same files only skips them.
	n, err := NewLoader().loadFS(fsys, "data", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListOrdering(t *testing.T) {
	loader := NewLoader()
	for _, c := range []struct{ typ, version string }{
		{"beta", "1.0.0"},
		{"alpha", "1.0.0"},
		{"alpha", "1.1.0"},
	} {
		_, err := loader.Add(minimalCatalog(c.typ, c.version, c.typ), "test")
		require.NoError(t, err)
	}

	list := loader.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Type)
	assert.Equal(t, "1.1.0", list[0].Version)
	assert.Equal(t, "1.0.0", list[1].Version)
	assert.Equal(t, "beta", list[2].Type)
	assert.Equal(t, 2, list[2].QuestionCount)
}

func TestReloaderPicksUpNewVersions(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader()
	reloader := NewReloader(loader, dir, time.Hour)

	assert.Equal(t, 0, reloader.Reload())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mini-1.yaml"), minimalCatalog("mini", "1.0.0", "Mini"), 0o644))
	assert.Equal(t, 1, reloader.Reload())
	assert.Equal(t, 0, reloader.Reload())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mini-2.yaml"), minimalCatalog("mini", "2.0.0", "Mini"), 0o644))
	assert.Equal(t, 1, reloader.Reload())

	c, err := loader.Get("mini", "")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", c.Version)
}
