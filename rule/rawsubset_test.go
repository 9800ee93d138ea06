package rule

import (
	"context"
	"testing"

	"github.com/cellannotation/capval/anndata"
)

func TestVarRawSubsetRule_Valid(t *testing.T) {
	r := NewVarRawSubsetRule()

	got := r.Check(context.Background(), fixtureView(validContainer()), testCatalogs())
	if len(got) != 0 {
		t.Errorf("Check() = %v; want no violations", got)
	}
}

func TestVarRawSubsetRule_NoRawSection(t *testing.T) {
	c := anndata.NewMemContainer(2, 2).
		SetVar(anndata.NewTable([]string{"g1", "g2"}))

	r := NewVarRawSubsetRule()
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; no raw section means nothing to compare", got)
	}
}

func TestVarRawSubsetRule_MissingFromRaw(t *testing.T) {
	c := anndata.NewMemContainer(2, 3).
		SetVar(anndata.NewTable([]string{"ENSG00000000003", "ENSG00000000005", "ENSG00000000419"})).
		SetRawVar(anndata.NewTable([]string{"ENSG00000000003", "ENSG00000000419"}))

	r := NewVarRawSubsetRule()
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 1 {
		t.Fatalf("Check() = %d violations; want 1", len(got))
	}
	if got[0].Location != "var.index[1]" {
		t.Errorf("Location = %q; want var.index[1]", got[0].Location)
	}
}

func TestVarRawSubsetRule_VersionInsensitive(t *testing.T) {
	// var carries versioned identifiers, raw.var bare ones; they refer to
	// the same genes.
	c := anndata.NewMemContainer(2, 2).
		SetVar(anndata.NewTable([]string{"ENSG00000000003.14", "ENSG00000000005.5"})).
		SetRawVar(anndata.NewTable([]string{"ENSG00000000003", "ENSG00000000005"}))

	r := NewVarRawSubsetRule()
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; version suffixes must be ignored", got)
	}
}
