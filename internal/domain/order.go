package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// KnownStatus reports whether s is one of the recognized shipping statuses.
// The status set is closed: updates carrying any other label are rejected.
func KnownStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CategorySummary is the selection of category fields exposed inside an
// expanded order item.
type CategorySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// ProductSummary is the selection of product fields exposed inside an
// expanded order item. Price is only populated on single-order reads; the
// list views omit it.
type ProductSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *float64         `json:"price,omitempty"`
	Category    *CategorySummary `json:"category"`
}

// UserSummary is the public selection of user fields attached to an order.
type UserSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// OrderItem is a (product, quantity) line belonging to exactly one order.
// Items are created only as children of an order creation and are immutable.
type OrderItem struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Product  *ProductSummary `json:"product"`
}

// Order is a placed purchase request. TotalPrice is a snapshot of
// sum(quantity x product price) taken at creation time; later product price
// changes do not touch it.
type Order struct {
	ID               string       `json:"id"`
	OrderItems       []OrderItem  `json:"orderItems"`
	ShippingAddress1 string       `json:"shippingAddress1"`
	ShippingAddress2 string       `json:"shippingAddress2,omitempty"`
	City             string       `json:"city"`
	Zip              string       `json:"zip"`
	Country          string       `json:"country"`
	Phone            string       `json:"phone"`
	Status           OrderStatus  `json:"status"`
	TotalPrice       float64      `json:"totalPrice"`
	User             *UserSummary `json:"user"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// NewOrderItem is a requested line in an order creation, before persistence.
type NewOrderItem struct {
	ProductID string
	Quantity  int
}

// NewOrder carries the validated input of an order creation into the store.
type NewOrder struct {
	UserID           string
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Zip              string
	Country          string
	Phone            string
	Items            []NewOrderItem
}

// SalesSummary is the aggregate over all orders.
type SalesSummary struct {
	TotalSales  float64 `json:"totalSales"`
	TotalOrders int     `json:"totalOrders"`
}
