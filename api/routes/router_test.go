package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/socialai-labs/socialai-gateway/internal/identity"
	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/setup"
	"github.com/socialai-labs/socialai-gateway/pkg/config"
	filestore "github.com/socialai-labs/socialai-gateway/pkg/store/file"
)

type gatewayFixture struct {
	handler http.Handler
	backend *backendFixture
	store   string
}

type backendFixture struct {
	createCalls int
	lastCreate  map[string]any
	createCode  int
}

func newBackendServer(t *testing.T, fx *backendFixture) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/app/api/create/user", func(w http.ResponseWriter, r *http.Request) {
		fx.createCalls++
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("create/user body not JSON: %v", err)
		}
		fx.lastCreate = body
		code := fx.createCode
		if code == 0 {
			code = http.StatusCreated
		}
		w.WriteHeader(code)
	})
	mux.HandleFunc("/webhook/app/api/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "u-backend", "nome": "Ana", "email": "ana@padaria.com",
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newGateway(t *testing.T, storePath string, fx *backendFixture) *gatewayFixture {
	t.Helper()

	backend := newBackendServer(t, fx)
	client, err := identity.NewClient(config.BackendConfig{
		BaseURL:           backend.URL,
		LoginPath:         "/webhook/app/api/login",
		ResetPasswordPath: "/webhook/app/api/reset-password",
		CreateUserPath:    "/webhook/app/api/create/user",
	})
	if err != nil {
		t.Fatalf("building identity client: %v", err)
	}

	st, err := filestore.New(storePath)
	if err != nil {
		t.Fatalf("building file store: %v", err)
	}

	sessions, err := session.NewManager(context.Background(), session.ManagerParams{
		Store:    st,
		Identity: client,
	})
	if err != nil {
		t.Fatalf("building session manager: %v", err)
	}

	flow, err := setup.NewFlow(setup.FlowParams{Sessions: sessions})
	if err != nil {
		t.Fatalf("building setup flow: %v", err)
	}

	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
	return &gatewayFixture{
		handler: NewRouter(cfg, nil, sessions, flow, nil),
		backend: fx,
		store:   storePath,
	}
}

func (g *gatewayFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data struct {
		Result session.Result `json:"result"`
		Next   string         `json:"next"`
	} `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestOnboardingEndToEnd(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "session.json")
	fx := &backendFixture{createCode: http.StatusConflict}
	g := newGateway(t, storePath, fx)

	// Protected views bounce to login before any session exists.
	rec := g.do(t, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = g.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana", "email": "ana@padaria.com", "password": "segredo",
	})
	env := decodeEnvelope(t, rec)
	if !env.Data.Result.Success {
		t.Fatalf("register failed: %s", env.Data.Result.Message)
	}
	if env.Data.Next != "/setup/business-info" {
		t.Fatalf("fresh account must land on business info, got %q", env.Data.Next)
	}

	rec = g.do(t, http.MethodPost, "/setup/business-info", map[string]string{
		"businessName": "Padaria da Ana",
		"industry":     "Food & Beverage",
		"description":  "Neighborhood bakery",
	})
	env = decodeEnvelope(t, rec)
	if !env.Data.Result.Success || env.Data.Next != "/setup/brand-identity" {
		t.Fatalf("business info stage failed: %+v", env.Data)
	}

	rec = g.do(t, http.MethodPost, "/setup/brand-identity", map[string]any{
		"brandVoice":     "Friendly",
		"targetAudience": "Local families",
	})
	env = decodeEnvelope(t, rec)
	if !env.Data.Result.Success || env.Data.Next != "/dashboard" {
		t.Fatalf("a 409 from the backend must still complete setup: %+v", env.Data)
	}
	if fx.createCalls != 1 {
		t.Fatalf("expected one create/user call, got %d", fx.createCalls)
	}
	for _, field := range []string{"nome", "email", "empresa", "segmentos", "voice", "target"} {
		if _, ok := fx.lastCreate[field]; !ok {
			t.Fatalf("create/user payload missing %q: %v", field, fx.lastCreate)
		}
	}

	rec = g.do(t, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard after setup: %d", rec.Code)
	}

	// A fresh gateway over the same store resumes the session.
	restarted := newGateway(t, storePath, &backendFixture{})
	rec = restarted.do(t, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restart must resume the session, got %d", rec.Code)
	}

	rec = restarted.do(t, http.MethodPost, "/auth/logout", nil)
	env = decodeEnvelope(t, rec)
	if !env.Data.Result.Success || env.Data.Next != "/login" {
		t.Fatalf("logout response: %+v", env.Data)
	}
	rec = restarted.do(t, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after logout, got %d", rec.Code)
	}
}

func TestUnmatchedPathsRedirectToLogin(t *testing.T) {
	g := newGateway(t, filepath.Join(t.TempDir(), "session.json"), &backendFixture{})

	rec := g.do(t, http.MethodGet, "/no-such-page", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("catch-all must land on /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHealthAndPublicViews(t *testing.T) {
	g := newGateway(t, filepath.Join(t.TempDir(), "session.json"), &backendFixture{})

	rec := g.do(t, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: %d", rec.Code)
	}
	rec = g.do(t, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness with no pingers: %d", rec.Code)
	}
	for _, path := range []string{"/login", "/register", "/forgot-password"} {
		rec = g.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("public view %s: %d", path, rec.Code)
		}
	}
}

func TestSettingsEditsPropagate(t *testing.T) {
	g := newGateway(t, filepath.Join(t.TempDir(), "session.json"), &backendFixture{})

	g.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana", "email": "ana@padaria.com", "password": "segredo",
	})

	rec := g.do(t, http.MethodPost, "/settings/profile", map[string]string{
		"name": "Ana Souza", "businessName": "Padaria Souza",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update: %d %s", rec.Code, rec.Body.String())
	}

	rec = g.do(t, http.MethodGet, "/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings view: %d", rec.Code)
	}
	var view struct {
		Data struct {
			Profile map[string]string `json:"profile"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("settings view payload: %v", err)
	}
	if view.Data.Profile["name"] != "Ana Souza" || view.Data.Profile["businessName"] != "Padaria Souza" {
		t.Fatalf("profile edit not reflected: %v", view.Data.Profile)
	}
}
