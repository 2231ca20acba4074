// Package semantic adapts the optional embedding-backed vector search
// capability (platform/qdrant + platform/ai/embeddings) to catalog's
// SemanticIndex interface: embed the query, search the vector store,
// hydrate payload hits back into domain objects. It is the injectable
// second stage of the product retriever cascade; the engine degrades
// gracefully to lexical+fuzzy when this capability is absent or errors.
package semantic

import (
	"context"
	"fmt"

	"zuscore/internal/domain"
	"zuscore/platform/ai/embeddings"
	"zuscore/platform/qdrant"
)

// defaultScoreThreshold discards low-confidence vector matches rather than
// returning near-random results as if they were relevant.
const defaultScoreThreshold = 0.5

// Index implements catalog.SemanticIndex over a Qdrant collection of
// product embeddings. Payloads are expected to carry a "name" field that
// matches a Product.Name in the snapshot passed to New, so results hydrate
// to full domain.Product values instead of a partial payload reconstruction.
type Index struct {
	qdrant     *qdrant.Client
	embeddings *embeddings.Client
	byName     map[string]domain.Product
}

// New wires a semantic Index. products is the current catalogue snapshot,
// used purely to hydrate Qdrant payload hits back into full Product values.
func New(qdrantClient *qdrant.Client, embeddingClient *embeddings.Client, products []domain.Product) *Index {
	byName := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}
	return &Index{qdrant: qdrantClient, embeddings: embeddingClient, byName: byName}
}

// Semantic implements catalog.SemanticIndex.
func (i *Index) Semantic(ctx context.Context, query string, k int) ([]domain.Product, error) {
	if k <= 0 {
		k = 5
	}

	vector, err := i.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := i.qdrant.SearchWithThreshold(ctx, vector, k, defaultScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.Product, 0, len(hits))
	for _, hit := range hits {
		name, ok := hit.Payload["name"].(string)
		if !ok {
			continue
		}
		if p, found := i.byName[name]; found {
			results = append(results, p)
		}
	}
	return results, nil
}
