package rule

import (
	"context"
	"testing"

	"github.com/cellannotation/capval/anndata"
)

func TestFieldDtypesRule_Valid(t *testing.T) {
	r := NewFieldDtypesRule([]string{"assay", "disease", "organism", "tissue"})

	got := r.Check(context.Background(), fixtureView(validContainer()), testCatalogs())
	if len(got) != 0 {
		t.Errorf("Check() = %v; want no violations", got)
	}
}

func TestFieldDtypesRule_NumericObsColumn(t *testing.T) {
	obs := anndata.NewTable([]string{"a", "b"})
	obs.AddColumn(&anndata.Column{Name: "assay", Dtype: anndata.DtypeInt, Floats: []float64{1, 2}})
	c := anndata.NewMemContainer(2, 2).SetObs(obs)

	r := NewFieldDtypesRule([]string{"assay"})
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 1 {
		t.Fatalf("Check() = %d violations; want 1", len(got))
	}
	if got[0].Location != "obs.assay" {
		t.Errorf("Location = %q; want obs.assay", got[0].Location)
	}
}

func TestFieldDtypesRule_NonStringIndex(t *testing.T) {
	obs := anndata.NewTable([]string{"0", "1"})
	obs.IndexDtype = anndata.DtypeInt
	c := anndata.NewMemContainer(2, 2).SetObs(obs)

	r := NewFieldDtypesRule(nil)
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 1 || got[0].Location != "obs.index" {
		t.Errorf("Check() = %v; want one violation at obs.index", got)
	}
}

func TestFieldDtypesRule_AbsentColumnSkipped(t *testing.T) {
	c := anndata.NewMemContainer(2, 2).SetObs(anndata.NewTable([]string{"a", "b"}))

	r := NewFieldDtypesRule([]string{"assay"})
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; absent columns are another rule's finding", got)
	}
}
