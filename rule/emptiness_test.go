package rule

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/cellannotation/capval/anndata"
)

func TestEmptyRowsRule_Valid(t *testing.T) {
	r := NewEmptyRowsRule(2)

	got := r.Check(context.Background(), fixtureView(validContainer()), testCatalogs())
	if len(got) != 0 {
		t.Errorf("Check() = %v; want no violations", got)
	}
}

func TestEmptyRowsRule_EmptyRows(t *testing.T) {
	c := anndata.NewMemContainer(4, 2).
		SetObs(anndata.NewTable([]string{"cell-0", "cell-1", "cell-2", "cell-3"})).
		SetMatrix(anndata.MatrixX, [][]float64{
			{1, 2},
			{0, 0},
			{3, 0},
			{0, math.NaN()},
		})

	r := NewEmptyRowsRule(2)
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 2 {
		t.Fatalf("Check() = %d violations; want 2", len(got))
	}
	if got[0].Location != "X[1,:]" || got[1].Location != "X[3,:]" {
		t.Errorf("Locations = %q, %q", got[0].Location, got[1].Location)
	}
	if !got[0].IsWarning() {
		t.Error("empty rows are warnings, not errors")
	}
	if !strings.Contains(got[0].Message, "cell-1") {
		t.Errorf("Message = %q; want the obs label in it", got[0].Message)
	}
}

func TestEmptyRowsRule_MissingMatrix(t *testing.T) {
	r := NewEmptyRowsRule(2)

	got := r.Check(context.Background(), fixtureView(anndata.NewMemContainer(2, 2)), testCatalogs())
	if len(got) != 0 {
		t.Errorf("Check() = %v; a missing matrix is another rule's finding", got)
	}
}

func TestEmptyColumnsRule_Valid(t *testing.T) {
	r := NewEmptyColumnsRule(2)

	got := r.Check(context.Background(), fixtureView(validContainer()), testCatalogs())
	if len(got) != 0 {
		t.Errorf("Check() = %v; want no violations", got)
	}
}

func TestEmptyColumnsRule_EmptyColumns(t *testing.T) {
	c := anndata.NewMemContainer(3, 3).
		SetVar(anndata.NewTable([]string{"g0", "g1", "g2"})).
		SetMatrix(anndata.MatrixX, [][]float64{
			{1, 0, 0},
			{2, 0, math.NaN()},
			{0, 0, 0},
		})

	r := NewEmptyColumnsRule(2)
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 2 {
		t.Fatalf("Check() = %d violations; want 2", len(got))
	}
	if got[0].Location != "X[:,1]" || got[1].Location != "X[:,2]" {
		t.Errorf("Locations = %q, %q", got[0].Location, got[1].Location)
	}
	if !strings.Contains(got[0].Message, "g1") {
		t.Errorf("Message = %q; want the var label in it", got[0].Message)
	}
	if !got[0].IsWarning() {
		t.Error("empty columns are warnings, not errors")
	}
}

func TestEmptyColumnsRule_SpansChunks(t *testing.T) {
	// The only value in column 1 arrives in the last chunk; the
	// accumulator must survive chunk boundaries.
	c := anndata.NewMemContainer(5, 2).SetMatrix(anndata.MatrixX, [][]float64{
		{1, 0},
		{1, 0},
		{1, 0},
		{1, 0},
		{1, 7},
	})

	r := NewEmptyColumnsRule(2)
	got := r.Check(context.Background(), fixtureView(c), testCatalogs())

	if len(got) != 0 {
		t.Errorf("Check() = %v; column 1 is populated in the final chunk", got)
	}
}
