package catalog

import (
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/pravnik-mk/compliance-engine/internal/engine"
	"github.com/pravnik-mk/compliance-engine/internal/models"
)

//go:embed data/*.yaml
var builtin embed.FS

// ErrVersionConflict is returned when a published type+version is loaded again with different content
var ErrVersionConflict = errors.New("catalog version already loaded with different content")

// Loader manages loading and caching of catalogs. Catalogs are never
// modified after they are added, so callers may share them freely.
type Loader struct {
	mu       sync.RWMutex
	catalogs map[string][]*entry // type -> versions, newest first
}

type entry struct {
	version *semver.Version
	catalog *models.Catalog
	digest  [sha256.Size]byte
	source  string
}

// NewLoader creates an empty catalog loader
func NewLoader() *Loader {
	return &Loader{
		catalogs: make(map[string][]*entry),
	}
}

// LoadBuiltin loads the catalogs compiled into the binary. Unlike
// LoadFromDir, any catalog that fails to parse or validate is an error.
func (l *Loader) LoadBuiltin() error {
	return l.loadStrict(builtin, "data")
}

func (l *Loader) loadStrict(fsys fs.FS, root string) error {
	n, err := l.loadFS(fsys, root, true)
	if err != nil {
		return err
	}
	slog.Info("builtin catalogs loaded", "count", n)
	return nil
}

// LoadFromDir loads all YAML catalogs from a directory. Files that fail to
// parse or validate are skipped with a warning. Returns the number of
// catalogs newly added.
func (l *Loader) LoadFromDir(dir string) (int, error) {
	slog.Debug("loading catalogs from directory", "dir", dir)

	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	return l.loadFS(os.DirFS(dir), ".", false)
}

// loadFS adds every YAML catalog under root. In strict mode per-file
// failures are collected and returned joined; otherwise they are logged
// and skipped.
func (l *Loader) loadFS(fsys fs.FS, root string, strict bool) (int, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalogs: %w", err)
	}

	var errs []error
	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		name := path.Join(root, e.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			if strict {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			slog.Warn("failed to read catalog", "file", name, "error", err)
			continue
		}

		added, err := l.Add(data, name)
		if err != nil {
			if strict {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			slog.Warn("failed to load catalog", "file", name, "error", err)
			continue
		}
		if added {
			loaded++
		}
	}

	return loaded, errors.Join(errs...)
}

// LoadFromFile loads a single catalog from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	_, err = l.Add(data, path)
	return err
}

// Add parses, validates and registers a catalog. Re-adding identical
// content is a no-op and reports false.
func (l *Loader) Add(data []byte, source string) (bool, error) {
	c, err := Parse(data)
	if err != nil {
		return false, err
	}

	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", c.Version, err)
	}

	e := &entry{
		version: v,
		catalog: c,
		digest:  sha256.Sum256(data),
		source:  source,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	versions := l.catalogs[c.Type]
	for _, existing := range versions {
		if !existing.version.Equal(v) {
			continue
		}
		if existing.digest == e.digest {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s@%s (first loaded from %s)", ErrVersionConflict, c.Type, c.Version, existing.source)
	}

	versions = append(versions, e)
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].version.GreaterThan(versions[j].version)
	})
	l.catalogs[c.Type] = versions

	slog.Info("catalog loaded",
		"type", c.Type,
		"version", c.Version,
		"categories", len(c.Categories),
		"questions", len(c.Questions),
		"source", source,
	)
	return true, nil
}

// Get returns the catalog for an assessment type. An empty version selects
// the newest; otherwise version is an exact version or a semver constraint
// ("~1.2", "^1") and the newest match wins.
func (l *Loader) Get(typ, version string) (*models.Catalog, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	versions := l.catalogs[typ]
	if len(versions) == 0 {
		return nil, &CatalogNotFoundError{Type: typ, Version: version}
	}

	if version == "" {
		return versions[0].catalog, nil
	}

	if exact, err := semver.StrictNewVersion(version); err == nil {
		for _, e := range versions {
			if e.version.Equal(exact) {
				return e.catalog, nil
			}
		}
		return nil, &CatalogNotFoundError{Type: typ, Version: version}
	}

	constraint, err := semver.NewConstraint(version)
	if err != nil {
		return nil, &CatalogNotFoundError{Type: typ, Version: version}
	}
	for _, e := range versions {
		if constraint.Check(e.version) {
			return e.catalog, nil
		}
	}

	return nil, &CatalogNotFoundError{Type: typ, Version: version}
}

// List returns summaries of every loaded catalog version, by type then newest version
func (l *Loader) List() []models.CatalogSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	types := make([]string, 0, len(l.catalogs))
	for typ := range l.catalogs {
		types = append(types, typ)
	}
	sort.Strings(types)

	var result []models.CatalogSummary
	for _, typ := range types {
		for _, e := range l.catalogs[typ] {
			result = append(result, e.catalog.Summary())
		}
	}
	return result
}

// Parse decodes and validates a catalog file
func Parse(data []byte) (*models.Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	c := &models.Catalog{
		Type:               strings.TrimSpace(cf.Type),
		Version:            strings.TrimSpace(cf.Version),
		Title:              cf.Title,
		Policy:             cf.Policy,
		SampleSize:         cf.SampleSize,
		AttentionThreshold: cf.AttentionThreshold,
		Bands:              cf.Bands,
		Categories:         cf.Categories,
		Questions:          cf.Questions,
	}

	// Apply defaults
	if c.Policy == "" {
		c.Policy = models.PolicyStrict
	}
	if c.AttentionThreshold == 0 {
		c.AttentionThreshold = engine.DefaultAttentionThreshold
	}
	for i := range c.Questions {
		if c.Questions[i].Type == "" {
			c.Questions[i].Type = models.QuestionYesNoPartialNA
		}
	}

	if err := Validate(c); err != nil {
		return nil, err
	}

	c.BuildIndex()
	return c, nil
}

// catalogFile represents the YAML structure of a catalog file
type catalogFile struct {
	Type               string             `yaml:"type"`
	Version            string             `yaml:"version"`
	Title              string             `yaml:"title"`
	Policy             models.Policy      `yaml:"policy"`
	SampleSize         int                `yaml:"sample_size"`
	AttentionThreshold int                `yaml:"attention_threshold"`
	Bands              []models.GradeBand `yaml:"bands"`
	Categories         []models.Category  `yaml:"categories"`
	Questions          []models.Question  `yaml:"questions"`
}
