package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zuscore/internal/catalog"
	"zuscore/internal/domain"
	"zuscore/internal/engine"
	"zuscore/internal/outlets"
	"zuscore/internal/session"
	"zuscore/platform/ai/embeddingapi"
	"zuscore/platform/logger"
	"zuscore/platform/validator"

	"github.com/gin-gonic/gin"
)

func testEngine() *engine.Engine {
	store := session.NewInMemoryStore(time.Hour, nil)
	products := catalog.New(catalog.NewStaticIndex([]domain.Product{
		{Name: "Ceramic Mug", NumericPrice: 39, Material: domain.MaterialCeramic},
	}), nil)
	outletEngine := outlets.New(outlets.NewStaticRegistry(nil))
	return engine.New(store, products, outletEngine, engine.Config{}, nil)
}

func buildTestRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if deps.Engine == nil {
		deps.Engine = testEngine()
	}
	if deps.Store == nil {
		deps.Store = session.NewInMemoryStore(time.Hour, nil)
	}
	if deps.Logger == nil {
		deps.Logger = logger.New("test")
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return New(deps)
}

func doJSONRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz_ReturnsOK(t *testing.T) {
	r := buildTestRouter(Deps{})
	w := doJSONRequest(r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("got %d, want 200", w.Code)
	}
}

func TestTurn_RejectsEmptyMessage(t *testing.T) {
	r := buildTestRouter(Deps{})
	w := doJSONRequest(r, http.MethodPost, "/v1/turn", map[string]any{"message": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400 for an empty message", w.Code)
	}
}

func TestTurn_AcceptsValidMessage(t *testing.T) {
	r := buildTestRouter(Deps{})
	w := doJSONRequest(r, http.MethodPost, "/v1/turn", map[string]any{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Errorf("got %d, want 200, body=%s", w.Code, w.Body.String())
	}
	var resp turnResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err == nil {
		if resp.SessionID == "" {
			t.Error("expected a non-empty session id in the response")
		}
	}
}

func TestRebuildIndex_UnconfiguredReturnsServiceUnavailable(t *testing.T) {
	r := buildTestRouter(Deps{})
	w := doJSONRequest(r, http.MethodPost, "/v1/admin/rebuild-index", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503 when no indexer is configured", w.Code)
	}
}

func TestRebuildIndex_ConfiguredPushesCatalogueDocuments(t *testing.T) {
	var receivedDocs int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body embeddingapi.AddDocumentsRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		receivedDocs = len(body.Documents)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embeddingapi.AddDocumentsResponse{Success: true, DocumentsAdded: receivedDocs})
	}))
	defer srv.Close()

	indexer := embeddingapi.NewClient(embeddingapi.Config{BaseURL: srv.URL, Collection: "products"})
	products := catalog.NewStaticIndex([]domain.Product{
		{Name: "Ceramic Mug", Category: "mug", Material: domain.MaterialCeramic},
		{Name: "All-Day Tumbler", Category: "tumbler", Material: domain.MaterialStainlessSteel},
	})

	r := buildTestRouter(Deps{Products: products, Indexer: indexer})
	w := doJSONRequest(r, http.MethodPost, "/v1/admin/rebuild-index", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if receivedDocs != 2 {
		t.Errorf("embedding API received %d documents, want 2", receivedDocs)
	}
}

func TestSessionDebug_ReturnsSnapshot(t *testing.T) {
	store := session.NewInMemoryStore(time.Hour, nil)
	_, _ = store.WithSession(context.Background(), "abc", func(s *domain.Session) error { return nil })
	r := buildTestRouter(Deps{Store: store})
	w := doJSONRequest(r, http.MethodGet, "/v1/admin/sessions/abc", nil)
	if w.Code != http.StatusOK {
		t.Errorf("got %d, want 200", w.Code)
	}
}
