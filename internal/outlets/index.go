// Package outlets implements the outlet query engine, plus the
// OutletRegistry interface the engine consumes from an external
// collaborator.
package outlets

import "zuscore/internal/domain"

// OutletRegistry is the consumed interface: same shape as catalog.ProductIndex
// but for the outlet snapshot.
type OutletRegistry interface {
	All() []domain.Outlet
}

// StaticRegistry is a read-only in-memory OutletRegistry loaded once at
// startup.
type StaticRegistry struct {
	outlets []domain.Outlet
}

// NewStaticRegistry wraps an already-loaded outlet slice.
func NewStaticRegistry(outlets []domain.Outlet) *StaticRegistry {
	return &StaticRegistry{outlets: outlets}
}

// All implements OutletRegistry.
func (s *StaticRegistry) All() []domain.Outlet {
	return s.outlets
}
