package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mfontenla/easyshop-api/internal/domain"
	"github.com/mfontenla/easyshop-api/internal/rest"
)

// Store is the order persistence contract. Reads return expanded orders;
// not-found is signalled with nil results rather than errors.
type Store interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) (bool, *domain.Order, error)
	TotalSales(ctx context.Context) (*domain.SalesSummary, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// EventPublisher emits order lifecycle events after the storage write
// commits. Publishing is best-effort and never fails the request.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store        Store
	createdPub   EventPublisher
	cancelledPub EventPublisher
	logger       *slog.Logger
}

// NewHandler builds the order workflow handler. Either publisher may be nil
// when no broker is configured.
func NewHandler(store Store, createdPub, cancelledPub EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		store:        store,
		createdPub:   createdPub,
		cancelledPub: cancelledPub,
		logger:       logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	rest.Success(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if order == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "Order not found")
		return
	}

	rest.Success(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	exists, err := h.store.UserExists(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to check user", "error", err, "user_id", userID)
		rest.Internal(w, h.logger, err)
		return
	}
	if !exists {
		rest.Fail(w, h.logger, http.StatusNotFound, "User not found or deleted")
		return
	}

	orders, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list user orders", "error", err, "user_id", userID)
		rest.Internal(w, h.logger, err)
		return
	}

	rest.Success(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateCreateOrder(&req); msg != "" {
		rest.Fail(w, h.logger, http.StatusBadRequest, msg)
		return
	}

	exists, err := h.store.UserExists(r.Context(), req.User)
	if err != nil {
		h.logger.Error("failed to check user", "error", err, "user_id", req.User)
		rest.Internal(w, h.logger, err)
		return
	}
	if !exists {
		rest.Fail(w, h.logger, http.StatusBadRequest, "User not found")
		return
	}

	in := domain.NewOrder{
		UserID:           req.User,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
	}
	for _, item := range req.OrderItems {
		in.Items = append(in.Items, domain.NewOrderItem{
			ProductID: item.Product,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.store.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrInsufficientStock) {
			rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid order: "+err.Error())
			return
		}
		h.logger.Error("failed to create order", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	if h.createdPub != nil {
		event := domain.OrderCreatedEvent{
			OrderID:    order.ID,
			UserID:     order.User.ID,
			UserEmail:  order.User.Email,
			ItemCount:  len(order.OrderItems),
			TotalPrice: order.TotalPrice,
			Timestamp:  order.CreatedAt,
		}
		if err := h.createdPub.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "user_id", order.User.ID, "total_price", order.TotalPrice)
	rest.Success(w, h.logger, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !domain.KnownStatus(req.Status) {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid order status: "+string(req.Status))
		return
	}

	order, err := h.store.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if order == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "Order not found or deleted")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	rest.SuccessMsg(w, h.logger, http.StatusOK, "Order status modified successfully", order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")

	deleted, order, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete order", "error", err, "order_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if !deleted {
		rest.Fail(w, h.logger, http.StatusNotFound, "Order not found or already deleted from database")
		return
	}

	if h.cancelledPub != nil {
		event := domain.OrderCancelledEvent{
			OrderID:   order.ID,
			UserID:    order.User.ID,
			UserEmail: order.User.Email,
			Timestamp: order.UpdatedAt,
		}
		if err := h.cancelledPub.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order cancelled event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order deleted", "order_id", id)
	rest.SuccessMsg(w, h.logger, http.StatusOK,
		"The order and its associated items were successfully removed from the database", nil)
}

func (h *Handler) HandleTotalSales(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.TotalSales(r.Context())
	if err != nil {
		h.logger.Error("failed to compute total sales", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	rest.Success(w, h.logger, http.StatusOK, summary)
}
