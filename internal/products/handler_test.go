package products

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mfontenla/easyshop-api/internal/domain"
	"github.com/mfontenla/easyshop-api/internal/rest"
)

const testCategoryID = "7f9c24e5-5afd-4b0a-9a3c-1c2d3e4f5a6b"

type fakeStore struct {
	products   map[string]*domain.Product
	categories map[string]*domain.Category
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]*domain.Product{},
		categories: map[string]*domain.Category{
			testCategoryID: {ID: testCategoryID, Name: "Gadgets"},
		},
	}
}

func (s *fakeStore) List(_ context.Context, filter ListFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			continue
		}
		if len(filter.CategoryIDs) > 0 {
			match := false
			for _, id := range filter.CategoryIDs {
				if p.Category != nil && p.Category.ID == id {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	return s.products[id], nil
}

func (s *fakeStore) Create(_ context.Context, p *domain.Product, categoryID string) error {
	s.nextID++
	p.ID = fmt.Sprintf("product-%d", s.nextID)
	p.Category = s.categories[categoryID]
	s.products[p.ID] = p
	return nil
}

func (s *fakeStore) Update(_ context.Context, id string, p *domain.Product, categoryID string) (*domain.Product, error) {
	if _, ok := s.products[id]; !ok {
		return nil, nil
	}
	p.ID = id
	p.Category = s.categories[categoryID]
	s.products[id] = p
	return p, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

func (s *fakeStore) CategoryExists(_ context.Context, id string) (bool, error) {
	_, ok := s.categories[id]
	return ok, nil
}

func newMux(store Store) *http.ServeMux {
	h := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/products", h.HandleList)
	mux.HandleFunc("GET /api/v1/products/{productId}", h.HandleGet)
	mux.HandleFunc("POST /api/v1/products", h.HandleCreate)
	mux.HandleFunc("PUT /api/v1/products/{productId}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/products/{productId}", h.HandleDelete)
	return mux
}

func productBody(overrides map[string]any) string {
	body := map[string]any{
		"name":         "Mechanical Keyboard",
		"description":  "Tenkeyless, brown switches",
		"price":        10.0,
		"category":     testCategoryID,
		"countInStock": 5,
	}
	for k, v := range overrides {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func decodeEnvelope(t *testing.T, body io.Reader) rest.Envelope {
	t.Helper()
	var env rest.Envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func TestHandleCreate(t *testing.T) {
	store := newFakeStore()
	mux := newMux(store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(productBody(nil)))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.products) != 1 {
		t.Fatalf("expected one stored product, got %d", len(store.products))
	}
	for _, p := range store.products {
		if p.Category == nil || p.Category.ID != testCategoryID {
			t.Fatalf("expected product linked to its category, got %+v", p.Category)
		}
	}
}

func TestHandleCreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantMsg   string
	}{
		{"missing name", map[string]any{"name": nil}, "The product name is required"},
		{"missing description", map[string]any{"description": nil}, "The product description is required"},
		{"negative price", map[string]any{"price": -1}, "The price must be a non-negative number"},
		{"missing category", map[string]any{"category": nil}, "The category reference is required"},
		{"malformed category", map[string]any{"category": "not-a-uuid"}, "Invalid category reference"},
		{"unknown category", map[string]any{"category": "11111111-2222-4333-8444-555555555555"}, "Invalid category reference"},
		{"missing stock count", map[string]any{"countInStock": nil}, "The stock count is required"},
		{"negative stock count", map[string]any{"countInStock": -3}, "The stock count must be a non-negative integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			mux := newMux(store)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products",
				strings.NewReader(productBody(tt.overrides)))
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec.Body)
			if env.Status != "failed" || env.Msg != tt.wantMsg {
				t.Fatalf("expected msg %q, got %+v", tt.wantMsg, env)
			}
			if len(store.products) != 0 {
				t.Fatal("invalid request must not reach the store")
			}
		})
	}
}

func TestHandleListFilters(t *testing.T) {
	store := newFakeStore()
	featured := &domain.Product{Name: "A", Description: "d", IsFeatured: true}
	plain := &domain.Product{Name: "B", Description: "d"}
	_ = store.Create(context.Background(), featured, testCategoryID)
	_ = store.Create(context.Background(), plain, testCategoryID)
	mux := newMux(store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?featured=true", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body)
	raw, _ := json.Marshal(env.Data)
	var list []domain.Product
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("failed to decode product list: %v", err)
	}
	if len(list) != 1 || list[0].ID != featured.ID {
		t.Fatalf("expected only the featured product, got %+v", list)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?featured=maybe", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad featured flag, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=-1", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rec.Code)
	}
}

func TestHandleGetNotFound(t *testing.T) {
	mux := newMux(newFakeStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body)
	if env.Msg != "Product not found" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestHandleUpdateNotFound(t *testing.T) {
	mux := newMux(newFakeStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/missing",
		strings.NewReader(productBody(nil)))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	store := newFakeStore()
	seed := &domain.Product{Name: "A", Description: "d"}
	_ = store.Create(context.Background(), seed, testCategoryID)
	mux := newMux(store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+seed.ID, nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body)
	if env.Msg != "Product removed successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+seed.ID, nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}
