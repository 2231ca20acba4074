// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// EngineConfig provides settings for the conversational engine: session
// lifecycle and per-turn bounds.
type EngineConfig interface {
	GetSessionIdleTimeout() time.Duration
	GetTurnDeadline() time.Duration
	GetSessionHistoryCap() int
	GetSessionEntityCap() int
	GetSessionLastShownCap() int
}

// SSTConfig provides the sales-and-services tax rate used by the calculator's
// tax pattern when the utterance does not specify a rate explicitly.
type SSTConfig interface {
	GetSSTRate() float64
}

// RedisConfig provides settings for the optional Redis-backed session store.
// When the URL is empty, the engine falls back to its in-process store.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// QdrantConfig provides settings for the Qdrant vector database used by the
// optional semantic product retriever.
type QdrantConfig interface {
	GetQdrantURL() string
	GetQdrantAPIKey() string
	GetQdrantCollection() string
	IsQdrantEnabled() bool
}

// EmbeddingConfig provides settings for the embedding API service that turns
// a query into the vector handed to Qdrant.
type EmbeddingConfig interface {
	GetEmbeddingAPIURL() string
	GetEmbeddingAPIKey() string
	IsEmbeddingEnabled() bool
}

// CatalogEmbeddingConfig provides settings for the administrative
// rebuild-index operation that (re)populates the product embedding index.
type CatalogEmbeddingConfig interface {
	GetCatalogEmbeddingAPIURL() string
	GetCatalogEmbeddingAPIKey() string
	GetCatalogEmbeddingCollection() string
	IsCatalogEmbeddingEnabled() bool
}

// HTTPConfig provides settings for the HTTP server. The transport layer
// itself is out of core scope; the struct is still defined so cmd/server
// can use it.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// CatalogSourceConfig provides the paths the core's external collaborators
// use to load the read-only product and outlet snapshots at startup.
type CatalogSourceConfig interface {
	GetProductCatalogPath() string
	GetOutletRegistryPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll bool
	CORSOrigins  []string

	SessionIdleTimeout  time.Duration
	TurnDeadline        time.Duration
	SessionHistoryCap   int
	SessionEntityCap    int
	SessionLastShownCap int

	SSTRate float64

	RedisURL string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	EmbeddingAPIURL string
	EmbeddingAPIKey string

	CatalogEmbeddingAPIURL     string
	CatalogEmbeddingAPIKey     string
	CatalogEmbeddingCollection string

	ProductCatalogPath string
	OutletRegistryPath string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// EngineConfig implementation
func (c *Config) GetSessionIdleTimeout() time.Duration { return c.SessionIdleTimeout }
func (c *Config) GetTurnDeadline() time.Duration       { return c.TurnDeadline }
func (c *Config) GetSessionHistoryCap() int            { return c.SessionHistoryCap }
func (c *Config) GetSessionEntityCap() int             { return c.SessionEntityCap }
func (c *Config) GetSessionLastShownCap() int          { return c.SessionLastShownCap }

// SSTConfig implementation
func (c *Config) GetSSTRate() float64 { return c.SSTRate }

// RedisConfig implementation
func (c *Config) GetRedisURL() string { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// QdrantConfig implementation
func (c *Config) GetQdrantURL() string        { return c.QdrantURL }
func (c *Config) GetQdrantAPIKey() string     { return c.QdrantAPIKey }
func (c *Config) GetQdrantCollection() string { return c.QdrantCollection }
func (c *Config) IsQdrantEnabled() bool {
	return c.QdrantURL != "" && c.QdrantCollection != ""
}

// EmbeddingConfig implementation
func (c *Config) GetEmbeddingAPIURL() string { return c.EmbeddingAPIURL }
func (c *Config) GetEmbeddingAPIKey() string { return c.EmbeddingAPIKey }
func (c *Config) IsEmbeddingEnabled() bool   { return c.EmbeddingAPIURL != "" }

// CatalogEmbeddingConfig implementation
func (c *Config) GetCatalogEmbeddingAPIURL() string { return c.CatalogEmbeddingAPIURL }
func (c *Config) GetCatalogEmbeddingAPIKey() string { return c.CatalogEmbeddingAPIKey }
func (c *Config) GetCatalogEmbeddingCollection() string {
	return c.CatalogEmbeddingCollection
}
func (c *Config) IsCatalogEmbeddingEnabled() bool {
	return c.CatalogEmbeddingAPIURL != ""
}

// CatalogSourceConfig implementation
func (c *Config) GetProductCatalogPath() string { return c.ProductCatalogPath }
func (c *Config) GetOutletRegistryPath() string { return c.OutletRegistryPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		SessionIdleTimeout:  mustDuration(getEnv("SESSION_IDLE_TIMEOUT", "2h")),
		TurnDeadline:        mustDuration(getEnv("TURN_DEADLINE", "30s")),
		SessionHistoryCap:   mustInt(getEnv("SESSION_HISTORY_CAP", "10")),
		SessionEntityCap:    mustInt(getEnv("SESSION_ENTITY_CAP", "20")),
		SessionLastShownCap: mustInt(getEnv("SESSION_LAST_SHOWN_CAP", "5")),

		SSTRate: mustFloat(getEnv("SST_RATE", "0.06")),

		RedisURL: getEnv("REDIS_URL", ""),

		QdrantURL:        getEnv("QDRANT_URL", ""),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "products"),

		EmbeddingAPIURL: getEnv("EMBEDDING_API_URL", ""),
		EmbeddingAPIKey: getEnv("EMBEDDING_API_KEY", ""),

		CatalogEmbeddingAPIURL:     getEnv("CATALOG_EMBEDDING_API_URL", ""),
		CatalogEmbeddingAPIKey:     getEnv("CATALOG_EMBEDDING_API_KEY", ""),
		CatalogEmbeddingCollection: getEnv("CATALOG_EMBEDDING_COLLECTION", "products"),

		ProductCatalogPath: getEnv("PRODUCT_CATALOG_PATH", "data/products.json"),
		OutletRegistryPath: getEnv("OUTLET_REGISTRY_PATH", "data/outlets.json"),
	}

	if cfg.SessionHistoryCap <= 0 {
		return nil, fmt.Errorf("SESSION_HISTORY_CAP must be positive")
	}
	if cfg.TurnDeadline <= 0 {
		return nil, fmt.Errorf("TURN_DEADLINE must be positive")
	}
	if cfg.SSTRate < 0 {
		return nil, fmt.Errorf("SST_RATE must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
