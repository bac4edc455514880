package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGate(t *testing.T, ttl time.Duration) (*Gate, *TokenManager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := NewTokenManager("unit-test-secret-0123456789abcdef", ttl)
	return NewGate(tokens, DefaultExemptions(), logger), tokens
}

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestGateExemptions(t *testing.T) {
	gate, _ := newTestGate(t, time.Hour)

	tests := []struct {
		name   string
		method string
		path   string
		exempt bool
	}{
		{"login", http.MethodPost, "/api/v1/user/login", true},
		{"signup", http.MethodPost, "/api/v1/user/signup", true},
		{"product read", http.MethodGet, "/api/v1/products", true},
		{"product by id read", http.MethodGet, "/api/v1/products/abc", true},
		{"category read", http.MethodGet, "/api/v1/categories", true},
		{"uploaded asset read", http.MethodGet, "/uploads/banner.png", true},
		{"product write", http.MethodPost, "/api/v1/products", false},
		{"category delete", http.MethodDelete, "/api/v1/categories/abc", false},
		{"upload write", http.MethodPost, "/uploads/banner.png", false},
		{"orders", http.MethodGet, "/api/v1/orders", false},
		{"user profile", http.MethodGet, "/api/v1/user/abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)

			gate.Authenticate(next).ServeHTTP(rec, req)

			if tt.exempt && (!*called || rec.Code != http.StatusOK) {
				t.Fatalf("expected %s %s to pass the gate, got %d", tt.method, tt.path, rec.Code)
			}
			if !tt.exempt && (*called || rec.Code != http.StatusUnauthorized) {
				t.Fatalf("expected %s %s to be blocked, got %d (called=%v)", tt.method, tt.path, rec.Code, *called)
			}
		})
	}
}

func TestGateRejectsBadCredentials(t *testing.T) {
	gate, tokens := newTestGate(t, time.Hour)

	expired, err := NewTokenManager("unit-test-secret-0123456789abcdef", -time.Minute).Generate("u1", "a@b.c", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	foreign, err := NewTokenManager("a-completely-different-secret-value", time.Hour).Generate("u1", "a@b.c", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	valid, err := tokens.Generate("u1", "a@b.c", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name    string
		header  string
		code    int
		wantMsg string
	}{
		{"missing header", "", http.StatusUnauthorized, "Unauthorized: missing bearer token"},
		{"wrong scheme", "Basic abc123", http.StatusUnauthorized, "Unauthorized: missing bearer token"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "Unauthorized: missing bearer token"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "Unauthorized: invalid token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Unauthorized: invalid token"},
		{"wrong signing key", "Bearer " + foreign, http.StatusUnauthorized, "Unauthorized: invalid token"},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			gate.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if tt.wantMsg != "" {
				var env struct {
					Status string `json:"status"`
					Msg    string `json:"msg"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
					t.Fatalf("failed to decode envelope: %v", err)
				}
				if env.Status != "failed" || env.Msg != tt.wantMsg {
					t.Fatalf("expected failed envelope %q, got %+v", tt.wantMsg, env)
				}
			}
		})
	}
}

func TestGateAttachesClaims(t *testing.T) {
	gate, tokens := newTestGate(t, time.Hour)

	token, err := tokens.Generate("user-42", "maria@example.com", true)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var got *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	gate.Authenticate(next).ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("expected claims on the request context")
	}
	if got.UserID != "user-42" || got.Email != "maria@example.com" || !got.IsAdmin {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	gate, tokens := newTestGate(t, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin-only", gate.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := gate.Authenticate(mux)

	customer, err := tokens.Generate("u1", "c@example.com", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	admin, err := tokens.Generate("u2", "a@example.com", true)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"customer token", customer, http.StatusForbidden},
		{"admin token", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}
