package rule

import (
	"context"
	"testing"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

func noopRule(name string) Rule {
	return NewRuleFunc(name, "test rule", capval.SeverityError,
		func(context.Context, *anndata.FileView, catalog.Set) []capval.Violation {
			return nil
		})
}

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := r.Register(noopRule(name)); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	got := r.Names()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q; want %q (registration order)", i, got[i], want[i])
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(noopRule("a")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(noopRule("a")); err == nil {
		t.Error("Register() should reject duplicate names")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d; want 1", r.Len())
	}
}

func TestRegistry_Without(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		r.MustRegister(noopRule(name))
	}

	filtered := r.Without("b")
	if filtered.Len() != 2 {
		t.Fatalf("Without(b).Len() = %d; want 2", filtered.Len())
	}
	if _, ok := filtered.Get("b"); ok {
		t.Error("b should be filtered out")
	}
	if r.Len() != 3 {
		t.Error("Without must not mutate the source registry")
	}
}

func TestDefault_CanonicalOrder(t *testing.T) {
	r := Default(capval.DefaultOptions())

	want := []string{
		"count-matrix",
		"embeddings",
		"required-obs-columns",
		"required-uns-keys",
		"unique-obs-index",
		"unique-var-index",
		"field-dtypes",
		"shape-consistency",
		"var-raw-subset",
		"gene-identifiers",
		"empty-rows",
		"empty-columns",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Default registry has %d rules; want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestDefault_DisabledRules(t *testing.T) {
	opts := capval.DefaultOptions()
	capval.WithDisabledRules("empty-rows", "empty-columns")(opts)

	r := Default(opts)
	if r.Len() != 10 {
		t.Errorf("Len() = %d; want 10", r.Len())
	}
	if _, ok := r.Get("empty-rows"); ok {
		t.Error("empty-rows should be disabled")
	}
}

func TestDefault_FullRunOnValidFixture(t *testing.T) {
	registry := Default(capval.DefaultOptions())
	view := fixtureView(validContainer())
	catalogs := testCatalogs()

	for _, r := range registry.Rules() {
		if got := r.Check(context.Background(), view, catalogs); len(got) != 0 {
			t.Errorf("rule %s reported %v on a valid fixture", r.Name(), got)
		}
	}
}
