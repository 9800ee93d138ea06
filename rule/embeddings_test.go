package rule

import (
	"context"
	"testing"

	"github.com/cellannotation/capval/anndata"
)

func TestEmbeddingsRule(t *testing.T) {
	tests := []struct {
		name       string
		specs      []anndata.ArraySpec
		violations int
	}{
		{
			name:       "valid umap",
			specs:      []anndata.ArraySpec{{Name: "X_umap", Rows: 4, Cols: 2}},
			violations: 0,
		},
		{
			name: "one valid among several",
			specs: []anndata.ArraySpec{
				{Name: "X_pca", Rows: 4, Cols: 50},
				{Name: "X_tsne", Rows: 4, Cols: 2},
			},
			violations: 0,
		},
		{
			name:       "no embeddings at all",
			specs:      nil,
			violations: 1,
		},
		{
			name:       "missing prefix",
			specs:      []anndata.ArraySpec{{Name: "umap", Rows: 4, Cols: 2}},
			violations: 1,
		},
		{
			name:       "wrong column count",
			specs:      []anndata.ArraySpec{{Name: "X_pca", Rows: 4, Cols: 50}},
			violations: 1,
		},
		{
			name:       "wrong row count",
			specs:      []anndata.ArraySpec{{Name: "X_umap", Rows: 3, Cols: 2}},
			violations: 1,
		},
	}

	r := NewEmbeddingsRule()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := anndata.NewMemContainer(4, 3)
			for _, spec := range tt.specs {
				c.AddEmbedding(spec)
			}

			got := r.Check(context.Background(), fixtureView(c), testCatalogs())
			if len(got) != tt.violations {
				t.Errorf("Check() = %d violations; want %d: %v", len(got), tt.violations, got)
			}
			if tt.violations > 0 && got[0].Location != "obsm" {
				t.Errorf("Location = %q; want obsm", got[0].Location)
			}
		})
	}
}
