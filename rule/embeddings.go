package rule

import (
	"context"
	"strings"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// embeddingPrefix is the obsm key prefix marking 2D embeddings
// (X_umap, X_tsne, X_pca).
const embeddingPrefix = "X_"

// EmbeddingsRule checks that the file carries at least one 2D embedding:
// an obsm entry named with the X_ prefix and shaped (n_obs, 2).
type EmbeddingsRule struct{}

// NewEmbeddingsRule creates the embeddings rule.
func NewEmbeddingsRule() *EmbeddingsRule {
	return &EmbeddingsRule{}
}

// Name returns the rule name.
func (r *EmbeddingsRule) Name() string { return "embeddings" }

// Description returns the rule description.
func (r *EmbeddingsRule) Description() string {
	return "at least one obsm embedding named with the X_ prefix and shaped (n_obs, 2) must be present"
}

// Severity returns the rule severity.
func (r *EmbeddingsRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *EmbeddingsRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	nObs, _ := view.Shape()

	specs, err := view.Embeddings()
	if err == nil {
		for _, spec := range specs {
			if strings.HasPrefix(spec.Name, embeddingPrefix) && spec.Rows == nObs && spec.Cols == 2 {
				return nil
			}
		}
	}

	return []capval.Violation{
		capval.ErrorViolation(r.Name()).
			Message("embedding is missing or incorrectly named: embeddings must be saved with the prefix X_, for example X_tsne, X_pca or X_umap").
			At("obsm").
			Build(),
	}
}
