// Package catalog resolves organisms to their reference catalogs of valid
// ENSEMBL gene identifiers.
//
// Catalogs are loaded once per process, cached, and immutable thereafter;
// they are shared read-only across all rules and all concurrent runs.
package catalog

import "strings"

// Organism is a supported species key.
type Organism string

// Supported organisms.
const (
	// HomoSapiens is human (ENSG identifiers)
	HomoSapiens Organism = "Homo sapiens"
	// MusMusculus is mouse (ENSMUSG identifiers)
	MusMusculus Organism = "Mus musculus"
	// MultiSpecies is a mixed dataset; its catalog is the union of all
	// single-organism catalogs
	MultiSpecies Organism = "Multi species"
)

// String returns the canonical organism name.
func (o Organism) String() string {
	return string(o)
}

// IsValid returns true for supported organisms.
func (o Organism) IsValid() bool {
	switch o {
	case HomoSapiens, MusMusculus, MultiSpecies:
		return true
	default:
		return false
	}
}

// GenePrefix returns the ENSEMBL identifier prefix for the organism, or
// empty for multi-species.
func (o Organism) GenePrefix() string {
	switch o {
	case HomoSapiens:
		return "ENSG"
	case MusMusculus:
		return "ENSMUSG"
	default:
		return ""
	}
}

// Parse resolves a free-form organism string case- and space-insensitively.
func Parse(s string) (Organism, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "homo sapiens":
		return HomoSapiens, true
	case "mus musculus":
		return MusMusculus, true
	case "multi species":
		return MultiSpecies, true
	default:
		return "", false
	}
}

// Organisms returns the single-species organisms backing MultiSpecies.
func Organisms() []Organism {
	return []Organism{HomoSapiens, MusMusculus}
}

// Catalog is the immutable set of known-valid gene identifiers for one
// organism. Lookup is O(1).
type Catalog struct {
	organism Organism
	ids      map[string]struct{}
}

// New builds a catalog from identifier strings. Version suffixes are
// stripped so lookups work on bare ENSEMBL ids.
func New(organism Organism, ids []string) *Catalog {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[StripVersion(id)] = struct{}{}
	}
	return &Catalog{organism: organism, ids: set}
}

// Union merges catalogs into one for the given organism key.
func Union(organism Organism, catalogs ...*Catalog) *Catalog {
	size := 0
	for _, c := range catalogs {
		size += len(c.ids)
	}
	set := make(map[string]struct{}, size)
	for _, c := range catalogs {
		for id := range c.ids {
			set[id] = struct{}{}
		}
	}
	return &Catalog{organism: organism, ids: set}
}

// Organism returns the organism key this catalog covers.
func (c *Catalog) Organism() Organism {
	return c.organism
}

// Contains reports whether the identifier (version suffix ignored) is in
// the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.ids[StripVersion(id)]
	return ok
}

// Len returns the number of identifiers in the catalog.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// StripVersion removes an ENSEMBL version suffix:
//
//	ENSG0001.8 -> ENSG0001
//	ENSG0001   -> ENSG0001
func StripVersion(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// Set maps organisms to their loaded catalogs. It is the read-only
// catalog view handed to every rule in a run.
type Set map[Organism]*Catalog

// For returns the catalog for an organism.
func (s Set) For(organism Organism) (*Catalog, bool) {
	c, ok := s[organism]
	return c, ok
}
