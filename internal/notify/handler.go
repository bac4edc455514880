// Package notify turns order lifecycle events into customer emails.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mfontenla/easyshop-api/internal/domain"
)

type Handler struct {
	mailer Mailer
	logger *slog.Logger
}

func NewHandler(mailer Mailer, logger *slog.Logger) *Handler {
	return &Handler{mailer: mailer, logger: logger}
}

func (h *Handler) HandleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "user_id", event.UserID)

	subject := "Order confirmation: " + event.OrderID
	body := fmt.Sprintf("Your order %s with %d items for a total of %.2f has been received.",
		event.OrderID, event.ItemCount, event.TotalPrice)

	if err := h.mailer.Send(ctx, event.UserEmail, subject, body); err != nil {
		// At-most-once delivery: log and move on so one bad address does
		// not wedge the whole topic.
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
	}

	return nil
}

func (h *Handler) HandleOrderCancelled(ctx context.Context, payload []byte) error {
	var event domain.OrderCancelledEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order cancelled event: %w", err)
	}

	h.logger.Info("processing order cancelled event", "order_id", event.OrderID, "user_id", event.UserID)

	subject := "Order cancelled: " + event.OrderID
	body := fmt.Sprintf("Your order %s has been removed together with all of its items.", event.OrderID)

	if err := h.mailer.Send(ctx, event.UserEmail, subject, body); err != nil {
		h.logger.Error("failed to send cancellation email", "error", err, "order_id", event.OrderID)
	}

	return nil
}
