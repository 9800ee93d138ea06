package rule

import (
	"context"
	"strings"
	"testing"

	"github.com/cellannotation/capval/anndata"
)

func TestGeneIdentifiersRule_Valid(t *testing.T) {
	r := NewGeneIdentifiersRule("")

	got := r.Check(context.Background(), fixtureView(validContainer()), testCatalogs())
	if len(got) != 0 {
		t.Errorf("Check() = %v; want no violations", got)
	}
}

func TestGeneIdentifiersRule_UnknownGenes(t *testing.T) {
	c := validContainer().SetVar(anndata.NewTable([]string{
		"ENSG00000000003",
		"ENSG99999999999",
		"not-a-gene",
	}))

	r := NewGeneIdentifiersRule("")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 2 {
		t.Fatalf("Check() = %d violations; want 2, one per unknown gene", len(got))
	}
	if got[0].Location != "var.index[1]" || got[1].Location != "var.index[2]" {
		t.Errorf("Locations = %q, %q", got[0].Location, got[1].Location)
	}
}

func TestGeneIdentifiersRule_VersionedIdentifiers(t *testing.T) {
	c := validContainer().SetVar(anndata.NewTable([]string{
		"ENSG00000000003.14",
		"ENSG00000000005.3",
		"ENSG00000000419.11",
	}))

	r := NewGeneIdentifiersRule("")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; versioned identifiers must resolve", got)
	}
}

func TestGeneIdentifiersRule_UnknownOrganism(t *testing.T) {
	c := validContainer()
	obs, _ := c.Obs()
	obs.AddColumn(&anndata.Column{
		Name:    "organism",
		Dtype:   anndata.DtypeCategorical,
		Strings: []string{"Danio rerio", "Danio rerio", "Danio rerio", "Danio rerio"},
	})

	r := NewGeneIdentifiersRule("")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 1 {
		t.Fatalf("Check() = %d violations; want exactly 1 for the unknown organism", len(got))
	}
	if got[0].Location != "obs.organism" {
		t.Errorf("Location = %q; want obs.organism", got[0].Location)
	}
	if !strings.Contains(got[0].Message, "Danio rerio") {
		t.Errorf("Message = %q", got[0].Message)
	}
}

func TestGeneIdentifiersRule_MultiSpecies(t *testing.T) {
	c := validContainer()
	obs, _ := c.Obs()
	obs.AddColumn(&anndata.Column{
		Name:    "organism",
		Dtype:   anndata.DtypeCategorical,
		Strings: []string{"Homo sapiens", "Mus musculus", "Homo sapiens", "Mus musculus"},
	})
	c.SetVar(anndata.NewTable([]string{
		"ENSG00000000003",
		"ENSMUSG00000000001",
		"ENSG00000000419",
	}))
	c.SetRawVar(nil)

	r := NewGeneIdentifiersRule("")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; mixed datasets use the union catalog", got)
	}
}

func TestGeneIdentifiersRule_Override(t *testing.T) {
	// The file says human but the override forces mouse; human genes are
	// then unknown.
	c := validContainer()

	r := NewGeneIdentifiersRule("Mus musculus")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 3 {
		t.Errorf("Check() = %d violations; want 3 (all human genes unknown to mouse)", len(got))
	}
}

func TestGeneIdentifiersRule_InvalidOverride(t *testing.T) {
	r := NewGeneIdentifiersRule("Danio rerio")

	got := r.Check(context.Background(), fixtureView(validContainer()), testCatalogs())
	if len(got) != 1 {
		t.Fatalf("Check() = %d violations; want 1", len(got))
	}
	if got[0].Location != "organism" {
		t.Errorf("Location = %q; want organism", got[0].Location)
	}
}

func TestGeneIdentifiersRule_NoOrganismDeclared(t *testing.T) {
	c := validContainer()
	obs, _ := c.Obs()
	obs.AddColumn(&anndata.Column{
		Name:    "organism",
		Dtype:   anndata.DtypeCategorical,
		Strings: []string{"", " ", "", ""},
	})

	r := NewGeneIdentifiersRule("")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; a file with no organism is another rule's finding", got)
	}
}

func TestGeneIdentifiersRule_EmptyVarIndex(t *testing.T) {
	c := validContainer().SetVar(anndata.NewTable(nil))

	r := NewGeneIdentifiersRule("")
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 1 {
		t.Fatalf("Check() = %d violations; want 1", len(got))
	}
	if !strings.Contains(got[0].Message, "gene identifiers are missing") {
		t.Errorf("Message = %q", got[0].Message)
	}
}
