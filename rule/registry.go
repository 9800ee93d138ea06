package rule

import (
	"fmt"

	"github.com/cellannotation/capval"
)

// Registry is an ordered, name-unique collection of rules. The registry
// is the authoritative schema: adding or removing a rule changes the
// schema, not the engine.
type Registry struct {
	order  []Rule
	byName map[string]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Rule),
	}
}

// Register appends a rule. Duplicate names are rejected.
func (r *Registry) Register(rule Rule) error {
	if _, ok := r.byName[rule.Name()]; ok {
		return fmt.Errorf("rule: duplicate rule name %q", rule.Name())
	}
	r.byName[rule.Name()] = rule
	r.order = append(r.order, rule)
	return nil
}

// MustRegister appends a rule and panics on a duplicate name.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns a rule by name.
func (r *Registry) Get(name string) (Rule, bool) {
	rule, ok := r.byName[name]
	return rule, ok
}

// Names returns the rule names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	for i, rule := range r.order {
		out[i] = rule.Name()
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.order)
}

// Without returns a copy of the registry with the named rules removed.
func (r *Registry) Without(names ...string) *Registry {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}

	out := NewRegistry()
	for _, rule := range r.order {
		if !skip[rule.Name()] {
			out.MustRegister(rule)
		}
	}
	return out
}

// Default builds the canonical CAP AnnData schema registry from the given
// options.
func Default(opts *capval.Options) *Registry {
	if opts == nil {
		opts = capval.DefaultOptions()
	}

	r := NewRegistry()
	r.MustRegister(NewCountMatrixRule(opts.CountCheckRows, opts.ChunkRows))
	r.MustRegister(NewEmbeddingsRule())
	r.MustRegister(NewRequiredObsColumnsRule(opts.RequiredObsColumns))
	r.MustRegister(NewRequiredUnsKeysRule(opts.RequiredUnsKeys))
	r.MustRegister(NewUniqueObsIndexRule())
	r.MustRegister(NewUniqueVarIndexRule())
	r.MustRegister(NewFieldDtypesRule(opts.RequiredObsColumns))
	r.MustRegister(NewShapeConsistencyRule())
	r.MustRegister(NewVarRawSubsetRule())
	r.MustRegister(NewGeneIdentifiersRule(opts.OrganismOverride))
	r.MustRegister(NewEmptyRowsRule(opts.ChunkRows))
	r.MustRegister(NewEmptyColumnsRule(opts.ChunkRows))

	if len(opts.DisabledRules) > 0 {
		return r.Without(opts.DisabledRules...)
	}
	return r
}
