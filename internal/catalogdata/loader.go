// Package catalogdata loads the read-only Product and Outlet snapshots
// consumed by catalog.StaticIndex / outlets.StaticRegistry from JSON files
// on disk. Loading happens once at startup; nothing in the turn path
// touches the filesystem.
package catalogdata

import (
	"encoding/json"
	"fmt"
	"os"

	"zuscore/internal/domain"
	"zuscore/internal/outlets"
)

// productRecord mirrors the on-disk JSON shape for one product.
type productRecord struct {
	Name         string   `json:"name"`
	DisplayPrice string   `json:"display_price"`
	NumericPrice float64  `json:"numeric_price"`
	RegularPrice *float64 `json:"regular_price,omitempty"`
	Category     string   `json:"category"`
	Capacity     string   `json:"capacity"`
	Material     string   `json:"material"`
	Colors       []string `json:"colors"`
	Features     []string `json:"features"`
	Collection   string   `json:"collection"`
	Promotion    string   `json:"promotion,omitempty"`
	OnSale       bool     `json:"on_sale"`
}

// outletRecord mirrors the on-disk JSON shape for one outlet.
type outletRecord struct {
	Name     string              `json:"name"`
	Address  string              `json:"address"`
	Hours    map[string]string   `json:"hours"`
	Services []string            `json:"services"`
}

// LoadProducts reads a JSON array of products from path.
func LoadProducts(path string) ([]domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read product catalog: %w", err)
	}

	var records []productRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse product catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, r := range records {
		features := make([]domain.Feature, 0, len(r.Features))
		for _, f := range r.Features {
			features = append(features, domain.Feature(f))
		}
		products = append(products, domain.Product{
			Name:         r.Name,
			DisplayPrice: r.DisplayPrice,
			NumericPrice: r.NumericPrice,
			RegularPrice: r.RegularPrice,
			Category:     r.Category,
			Capacity:     r.Capacity,
			Material:     domain.Material(r.Material),
			Colors:       r.Colors,
			Features:     features,
			Collection:   r.Collection,
			Promotion:    r.Promotion,
			OnSale:       r.OnSale,
		})
	}
	return products, nil
}

// LoadOutlets reads a JSON array of outlets from path.
func LoadOutlets(path string) ([]domain.Outlet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outlet registry: %w", err)
	}

	var records []outletRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse outlet registry: %w", err)
	}

	result := make([]domain.Outlet, 0, len(records))
	for _, r := range records {
		hours := make(map[string]domain.DayHours, len(r.Hours))
		for day, raw := range r.Hours {
			hours[day] = outlets.ParseHours(raw)
		}
		services := make([]domain.Service, 0, len(r.Services))
		for _, s := range r.Services {
			services = append(services, domain.Service(s))
		}
		result = append(result, domain.Outlet{
			Name:     r.Name,
			Address:  r.Address,
			Hours:    hours,
			Services: services,
		})
	}
	return result, nil
}
