// Command server wires the conversational engine to the HTTP transport
// layer and starts listening: config load -> infrastructure wiring ->
// module construction -> router -> graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zuscore/internal/catalog"
	"zuscore/internal/catalogdata"
	"zuscore/internal/engine"
	"zuscore/internal/outlets"
	"zuscore/internal/retriever/semantic"
	"zuscore/internal/session"
	"zuscore/internal/transport"
	"zuscore/platform/ai/embeddingapi"
	"zuscore/platform/ai/embeddings"
	"zuscore/platform/config"
	"zuscore/platform/logger"
	"zuscore/platform/qdrant"
	"zuscore/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Catalogue snapshots (external collaborators, read-only after load)
	// ========================================================================

	products, err := catalogdata.LoadProducts(cfg.ProductCatalogPath)
	if err != nil {
		log.Error("failed to load product catalog", "error", err)
		panic("failed to load product catalog: " + err.Error())
	}
	log.Info("product catalog loaded", "count", len(products))

	outletRecords, err := catalogdata.LoadOutlets(cfg.OutletRegistryPath)
	if err != nil {
		log.Error("failed to load outlet registry", "error", err)
		panic("failed to load outlet registry: " + err.Error())
	}
	log.Info("outlet registry loaded", "count", len(outletRecords))

	productIndex := catalog.NewStaticIndex(products)
	outletRegistry := outlets.NewStaticRegistry(outletRecords)

	// ========================================================================
	// Optional semantic retriever capability: absent unless both Qdrant
	// and the embedding API are configured.
	// ========================================================================

	var semanticIndex catalog.SemanticIndex
	if cfg.IsQdrantEnabled() && cfg.IsEmbeddingEnabled() {
		qdrantClient := qdrant.NewClient(qdrant.Config{
			BaseURL:    cfg.GetQdrantURL(),
			APIKey:     cfg.GetQdrantAPIKey(),
			Collection: cfg.GetQdrantCollection(),
		})
		embeddingClient := embeddings.NewClient(embeddings.Config{
			BaseURL: cfg.GetEmbeddingAPIURL(),
			APIKey:  cfg.GetEmbeddingAPIKey(),
		})
		semanticIndex = semantic.New(qdrantClient, embeddingClient, products)
		log.Info("semantic product retriever enabled", "collection", cfg.GetQdrantCollection())
	} else {
		log.Warn("semantic product retriever disabled; falling back to lexical + fuzzy only")
	}

	productRetriever := catalog.New(productIndex, semanticIndex)
	outletEngine := outlets.New(outletRegistry)

	// ========================================================================
	// Catalogue indexer: backs the administrative rebuild-index endpoint,
	// pushing the product catalogue into the embedding API's vector store.
	// Distinct from the query-time embeddings.Client above.
	// ========================================================================

	var catalogIndexer *embeddingapi.Client
	if cfg.IsCatalogEmbeddingEnabled() {
		catalogIndexer = embeddingapi.NewClient(embeddingapi.Config{
			BaseURL:    cfg.GetCatalogEmbeddingAPIURL(),
			APIKey:     cfg.GetCatalogEmbeddingAPIKey(),
			Collection: cfg.GetCatalogEmbeddingCollection(),
		})
		log.Info("catalog embedding indexer enabled", "collection", cfg.GetCatalogEmbeddingCollection())
	}

	// ========================================================================
	// Session memory: Redis-backed when REDIS_URL is set, in-process
	// otherwise.
	// ========================================================================

	var store session.Store
	if cfg.IsRedisEnabled() {
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			panic("invalid REDIS_URL: " + err.Error())
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		store = session.NewRedisStore(redisClient, cfg.GetSessionIdleTimeout(), log)
		log.Info("session memory backed by redis")
	} else {
		store = session.NewInMemoryStore(cfg.GetSessionIdleTimeout(), log)
		log.Info("session memory backed by in-process store")
	}

	// ========================================================================
	// Controller
	// ========================================================================

	turnEngine := engine.New(store, productRetriever, outletEngine, engine.Config{
		TurnDeadline: cfg.GetTurnDeadline(),
		HistoryCap:   cfg.GetSessionHistoryCap(),
		EntityCap:    cfg.GetSessionEntityCap(),
		LastShownCap: cfg.GetSessionLastShownCap(),
		SSTRate:      cfg.GetSSTRate(),
	}, log)

	// ========================================================================
	// HTTP layer
	// ========================================================================

	val := validator.New()
	router := transport.New(transport.Deps{
		Engine:          turnEngine,
		Store:           store,
		Logger:          log,
		Validator:       val,
		SemanticEnabled: semanticIndex != nil,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		Products:        productIndex,
		Indexer:         catalogIndexer,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
