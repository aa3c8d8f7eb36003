package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/streamgraph/internal/core/graph"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
	"github.com/arung-agamani/streamgraph/internal/demo"
	"github.com/arung-agamani/streamgraph/internal/httpapi/auth"
	"github.com/arung-agamani/streamgraph/internal/httpapi/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.Auth) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New()
	if err := demo.Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)
	svc := service.NewGraphService(g, reg)

	a := auth.New(auth.Config{
		Username: "admin",
		Password: "secret",
		Secret:   "0123456789012345678901234567890123456789",
		TokenTTL: time.Minute,
	})
	return NewRouter(svc, a), a
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestListComponentsIsUnauthenticated(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/components", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Components []struct{ Name string } `json:"components"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Components) != 3 {
		t.Fatalf("expected 3 registered demo components, got %d", len(body.Components))
	}
}

func TestCreateNodeRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/nodes", strings.NewReader(`{"type":"clock"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestCreateNodeWithTokenSucceeds(t *testing.T) {
	r, a := newTestRouter(t)
	token, err := a.CreateToken("admin")
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/nodes", strings.NewReader(`{"type":"clock"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginThenUseToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected successful login, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Token == "" {
		t.Fatal("expected a non-empty token")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/nodes", strings.NewReader(`{"type":"clock"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+body.Token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected the login token to authorize node creation, got %d: %s", w.Code, w.Body.String())
	}
}
