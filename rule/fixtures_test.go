package rule

import (
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// Shared fixture identifiers.
var (
	humanGenes = []string{"ENSG00000000003", "ENSG00000000005", "ENSG00000000419"}
	mouseGenes = []string{"ENSMUSG00000000001", "ENSMUSG00000000028"}
)

// validContainer builds a 4x3 dataset that satisfies every rule.
func validContainer() *anndata.MemContainer {
	obs := anndata.NewTable([]string{"AAAC-1", "AAAG-1", "AACC-1", "AACG-1"})
	for _, col := range []struct {
		name   string
		values []string
	}{
		{"assay", []string{"10x 3' v3", "10x 3' v3", "10x 3' v3", "10x 3' v3"}},
		{"disease", []string{"normal", "normal", "normal", "normal"}},
		{"organism", []string{"Homo sapiens", "Homo sapiens", "Homo sapiens", "Homo sapiens"}},
		{"tissue", []string{"blood", "blood", "lung", "lung"}},
	} {
		obs.AddColumn(&anndata.Column{Name: col.name, Dtype: anndata.DtypeCategorical, Strings: col.values})
	}

	matrix := [][]float64{
		{3, 0, 1},
		{0, 2, 0},
		{1, 1, 4},
		{5, 0, 2},
	}

	return anndata.NewMemContainer(4, 3).
		SetObs(obs).
		SetVar(anndata.NewTable(append([]string{}, humanGenes...))).
		SetRawVar(anndata.NewTable(append([]string{}, humanGenes...))).
		SetUns(map[string]any{"title": "pbmc test dataset"}).
		AddEmbedding(anndata.ArraySpec{Name: "X_umap", Rows: 4, Cols: 2, Dtype: anndata.DtypeFloat}).
		SetMatrix(anndata.MatrixX, matrix).
		SetMatrix(anndata.MatrixRawX, matrix)
}

// testCatalogs builds a small in-memory catalog set covering the fixture
// genes.
func testCatalogs() catalog.Set {
	human := catalog.New(catalog.HomoSapiens, humanGenes)
	mouse := catalog.New(catalog.MusMusculus, mouseGenes)
	return catalog.Set{
		catalog.HomoSapiens:  human,
		catalog.MusMusculus:  mouse,
		catalog.MultiSpecies: catalog.Union(catalog.MultiSpecies, human, mouse),
	}
}

func fixtureView(c anndata.Container) *anndata.FileView {
	return anndata.OpenContainer(c, "fixture.h5ad")
}
