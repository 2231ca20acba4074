// Package catalog implements the product retriever, plus the ProductIndex
// interface the engine consumes from an external collaborator.
package catalog

import (
	"context"

	"zuscore/internal/domain"
)

// ProductIndex is the consumed interface: the engine is agnostic to
// whether the snapshot came from a database or a JSON file, as long as the
// Product invariants hold.
type ProductIndex interface {
	All() []domain.Product
}

// SemanticIndex is the optional capability the product retriever treats as
// injectable: when absent, the retriever degrades to lexical + fuzzy only.
type SemanticIndex interface {
	Semantic(ctx context.Context, query string, k int) ([]domain.Product, error)
}

// StaticIndex is a read-only in-memory ProductIndex, loaded once at
// startup. Ownership: the core never mutates the slice it was given.
type StaticIndex struct {
	products []domain.Product
}

// NewStaticIndex wraps an already-loaded product slice.
func NewStaticIndex(products []domain.Product) *StaticIndex {
	return &StaticIndex{products: products}
}

// All implements ProductIndex.
func (s *StaticIndex) All() []domain.Product {
	return s.products
}
