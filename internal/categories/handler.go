package categories

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mfontenla/easyshop-api/internal/domain"
	"github.com/mfontenla/easyshop-api/internal/rest"
)

type Store interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, id string, c *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	rest.Success(w, h.logger, http.StatusOK, categories)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("categoryId")

	category, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get category", "error", err, "category_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if category == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "Category not found")
		return
	}

	rest.Success(w, h.logger, http.StatusOK, category)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		rest.Fail(w, h.logger, http.StatusBadRequest, "The category name is required")
		return
	}

	category := &domain.Category{Name: req.Name, Color: req.Color, Icon: req.Icon}
	if err := h.store.Create(r.Context(), category); err != nil {
		h.logger.Error("failed to create category", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	rest.Success(w, h.logger, http.StatusOK, category)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("categoryId")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		rest.Fail(w, h.logger, http.StatusBadRequest, "The category name is required")
		return
	}

	category, err := h.store.Update(r.Context(), id, &domain.Category{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		h.logger.Error("failed to update category", "error", err, "category_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if category == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "Category not found")
		return
	}

	rest.Success(w, h.logger, http.StatusOK, category)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("categoryId")

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete category", "error", err, "category_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if !deleted {
		rest.Fail(w, h.logger, http.StatusNotFound, "Category not found")
		return
	}

	rest.SuccessMsg(w, h.logger, http.StatusOK, "Category removed successfully", nil)
}
