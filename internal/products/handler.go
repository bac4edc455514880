package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mfontenla/easyshop-api/internal/domain"
	"github.com/mfontenla/easyshop-api/internal/rest"
)

type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product, categoryID string) error
	Update(ctx context.Context, id string, p *domain.Product, categoryID string) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	CategoryExists(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// CountInStock is a pointer so a zero stock count still passes the
// presence check.
type productRequest struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	RichDescription string  `json:"richDescription"`
	Image           string  `json:"image"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price" validate:"gte=0"`
	Category        string  `json:"category" validate:"required,uuid4"`
	CountInStock    *int    `json:"countInStock" validate:"required,gte=0"`
	Rating          float64 `json:"rating" validate:"gte=0"`
	NumReviews      int     `json:"numReviews" validate:"gte=0"`
	IsFeatured      bool    `json:"isFeatured"`
}

var ruleMessages = map[string]string{
	"Name.required":         "The product name is required",
	"Description.required":  "The product description is required",
	"Price.gte":             "The price must be a non-negative number",
	"Category.required":     "The category reference is required",
	"Category.uuid4":        "Invalid category reference",
	"CountInStock.required": "The stock count is required",
	"CountInStock.gte":      "The stock count must be a non-negative integer",
	"Rating.gte":            "The rating must be a non-negative number",
	"NumReviews.gte":        "The review count must be a non-negative integer",
}

func validateProduct(req *productRequest) string {
	err := validate.Struct(req)
	if err == nil {
		return ""
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request body"
	}
	first := errs[0]
	if msg, ok := ruleMessages[first.Field()+"."+first.Tag()]; ok {
		return msg
	}
	return "Invalid value for field " + first.Field()
}

func (req *productRequest) toDomain() *domain.Product {
	return &domain.Product{
		Name:            req.Name,
		Description:     req.Description,
		RichDescription: req.RichDescription,
		Image:           req.Image,
		Brand:           req.Brand,
		Price:           req.Price,
		CountInStock:    *req.CountInStock,
		Rating:          req.Rating,
		NumReviews:      req.NumReviews,
		IsFeatured:      req.IsFeatured,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter

	if categories := r.URL.Query().Get("categories"); categories != "" {
		filter.CategoryIDs = strings.Split(categories, ",")
	}
	if featured := r.URL.Query().Get("featured"); featured != "" {
		value, err := strconv.ParseBool(featured)
		if err != nil {
			rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid featured flag")
			return
		}
		filter.Featured = &value
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		value, err := strconv.Atoi(limit)
		if err != nil || value < 0 {
			rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = value
	}

	products, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	rest.Success(w, h.logger, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("productId")

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if product == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "Product not found")
		return
	}

	rest.Success(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	product := req.toDomain()
	if err := h.store.Create(r.Context(), product, req.Category); err != nil {
		h.logger.Error("failed to create product", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	rest.Success(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("productId")

	req, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	product, err := h.store.Update(r.Context(), id, req.toDomain(), req.Category)
	if err != nil {
		h.logger.Error("failed to update product", "error", err, "product_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if product == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "Product not found")
		return
	}

	rest.Success(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("productId")

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete product", "error", err, "product_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if !deleted {
		rest.Fail(w, h.logger, http.StatusNotFound, "Product not found")
		return
	}

	rest.SuccessMsg(w, h.logger, http.StatusOK, "Product removed successfully", nil)
}

// decodeAndValidate parses the body, runs the field rules, and checks the
// category reference resolves. Writes the failure response itself.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request) (*productRequest, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if msg := validateProduct(&req); msg != "" {
		rest.Fail(w, h.logger, http.StatusBadRequest, msg)
		return nil, false
	}

	exists, err := h.store.CategoryExists(r.Context(), req.Category)
	if err != nil {
		h.logger.Error("failed to check category", "error", err, "category_id", req.Category)
		rest.Internal(w, h.logger, err)
		return nil, false
	}
	if !exists {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid category reference")
		return nil, false
	}

	return &req, true
}
