package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cellannotation/capval/cache"
	"github.com/cellannotation/capval/genemap"
)

// idColumn is the gene map column holding the ENSEMBL identifiers.
const idColumn = "ENSEMBL_gene"

// UnavailableError reports that the backing catalog data for an organism
// could not be located or parsed. This is a fatal run failure, never a
// schema violation.
type UnavailableError struct {
	Organism Organism
	Source   string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("catalog: %s unavailable (source %s): %v", e.Organism, e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithDir loads gene maps from CSV files in dir (homo_sapiens.csv,
// mus_musculus.csv) instead of the embedded defaults.
func WithDir(dir string) ProviderOption {
	return func(p *Provider) {
		p.dir = dir
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if log != nil {
			p.log = log
		}
	}
}

// WithLookupHooks installs callbacks fired on cache hits and misses,
// typically wired to a metrics collector.
func WithLookupHooks(onHit, onMiss func()) ProviderOption {
	return func(p *Provider) {
		p.onHit = onHit
		p.onMiss = onMiss
	}
}

// Provider loads and caches reference catalogs. Catalogs are loaded once
// per process lifetime and shared read-only afterwards; there is no
// teardown. Safe for concurrent use.
type Provider struct {
	dir    string
	log    *zap.Logger
	cache  *cache.Once[Organism, *Catalog]
	onHit  func()
	onMiss func()
}

// NewProvider creates a catalog provider backed by the embedded gene maps
// unless WithDir overrides the source.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		log:   zap.NewNop(),
		cache: cache.New[Organism, *Catalog](),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the catalog for an organism, reading the backing gene map
// on first use. MultiSpecies resolves to the union of all single-organism
// catalogs. Failures surface as *UnavailableError.
func (p *Provider) Load(organism Organism) (*Catalog, error) {
	if !organism.IsValid() {
		return nil, &UnavailableError{
			Organism: organism,
			Source:   p.sourceName(),
			Err:      fmt.Errorf("unsupported organism %q", string(organism)),
		}
	}

	// A single GetOrLoad keeps the cache stats at one hit or one miss
	// per lookup; the hooks fire on its outcome.
	loaded := false
	c, err := p.cache.GetOrLoad(organism, func() (*Catalog, error) {
		loaded = true
		return p.load(organism)
	})
	if loaded {
		if p.onMiss != nil {
			p.onMiss()
		}
	} else if p.onHit != nil {
		p.onHit()
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoadAll loads every supported organism, including the multi-species
// union, and returns them as a Set.
func (p *Provider) LoadAll() (Set, error) {
	set := make(Set, len(Organisms())+1)
	for _, organism := range Organisms() {
		c, err := p.Load(organism)
		if err != nil {
			return nil, err
		}
		set[organism] = c
	}
	multi, err := p.Load(MultiSpecies)
	if err != nil {
		return nil, err
	}
	set[MultiSpecies] = multi
	return set, nil
}

// CacheStats returns the underlying cache statistics.
func (p *Provider) CacheStats() cache.Stats {
	return p.cache.Stats()
}

func (p *Provider) load(organism Organism) (*Catalog, error) {
	if organism == MultiSpecies {
		parts := make([]*Catalog, 0, len(Organisms()))
		for _, o := range Organisms() {
			c, err := p.Load(o)
			if err != nil {
				return nil, err
			}
			parts = append(parts, c)
		}
		return Union(MultiSpecies, parts...), nil
	}

	name := geneMapFile(organism)
	r, source, err := p.open(name)
	if err != nil {
		return nil, &UnavailableError{Organism: organism, Source: source, Err: err}
	}
	defer r.Close()

	ids, err := readGeneMap(r)
	if err != nil {
		return nil, &UnavailableError{Organism: organism, Source: source, Err: err}
	}

	p.log.Debug("loaded gene catalog",
		zap.String("organism", organism.String()),
		zap.String("source", source),
		zap.Int("identifiers", len(ids)))
	return New(organism, ids), nil
}

func (p *Provider) open(name string) (io.ReadCloser, string, error) {
	if p.dir != "" {
		path := filepath.Join(p.dir, name)
		f, err := os.Open(path)
		return f, path, err
	}
	f, err := genemap.Open(name)
	return f, "embedded:" + name, err
}

func (p *Provider) sourceName() string {
	if p.dir != "" {
		return p.dir
	}
	return "embedded"
}

func geneMapFile(organism Organism) string {
	switch organism {
	case MusMusculus:
		return genemap.Files.MusMusculus
	default:
		return genemap.Files.HomoSapiens
	}
}

// readGeneMap parses a CSV gene map and returns the identifier column
// values.
func readGeneMap(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading gene map header: %w", err)
	}

	idIdx := -1
	for i, name := range header {
		if name == idColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("gene map has no %s column", idColumn)
	}

	var ids []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading gene map: %w", err)
		}
		if idIdx >= len(record) || record[idIdx] == "" {
			continue
		}
		ids = append(ids, record[idIdx])
	}
	return ids, nil
}
