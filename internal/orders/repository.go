package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mfontenla/easyshop-api/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order and its items in one transaction. For each item
// it snapshots the product's current price into the running total and
// decrements stock, guarded so the transaction aborts instead of overselling.
// A failure anywhere leaves no orphaned items behind.
func (r *OrderRepository) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	orderID := uuid.New().String()
	var total float64

	// The order row goes in first so the item rows have a parent to
	// reference; the accumulated total is written once the loop is done.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, shipping_address1, shipping_address2, city, zip,
			country, phone, status, total_price, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, NOW(), NOW())
	`, orderID, in.ShippingAddress1, in.ShippingAddress2, in.City, in.Zip,
		in.Country, in.Phone, domain.OrderStatusPending, in.UserID)
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		var price float64
		err := tx.QueryRowContext(ctx, `
			SELECT price FROM products WHERE id = $1
		`, item.ProductID).Scan(&price)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
			}
			return nil, err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET count_in_stock = count_in_stock - $2, updated_at = NOW()
			WHERE id = $1 AND count_in_stock >= $2
		`, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.ProductID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), orderID, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}

		total += float64(item.Quantity) * price
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET total_price = $1 WHERE id = $2
	`, total, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

// GetByID returns the expanded order, or (nil, nil) when absent. The single
// order view exposes product prices in the expansion; list views do not.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := r.queryOrders(ctx, "WHERE o.id = $1", []any{id}, true)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

// List returns every order, expanded, newest-first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, "", nil, false)
}

// ListByUser returns the user's orders, expanded, newest-first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.queryOrders(ctx, "WHERE o.user_id = $1", []any{userID}, false)
}

// UpdateStatus overwrites the status field. Returns (nil, nil) when the
// order does not exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes the order and every one of its items in one transaction,
// returning each item's quantity to product stock. Reports false when the
// order does not exist.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, *domain.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return false, nil, err
	}
	if order == nil {
		return false, nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		UPDATE products p
		SET count_in_stock = p.count_in_stock + oi.quantity, updated_at = NOW()
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.product_id = p.id
	`, id)
	if err != nil {
		return false, nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return false, nil, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, nil, err
	}
	if rowsAffected == 0 {
		return false, nil, nil
	}

	if err := tx.Commit(); err != nil {
		return false, nil, err
	}

	return true, order, nil
}

// TotalSales aggregates total_price and the order count over all orders.
// Zero orders reports zero sales rather than an error.
func (r *OrderRepository) TotalSales(ctx context.Context) (*domain.SalesSummary, error) {
	summary := &domain.SalesSummary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_price), 0), COUNT(*) FROM orders
	`).Scan(&summary.TotalSales, &summary.TotalOrders)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// UserExists reports whether the id resolves to a stored user.
func (r *OrderRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// queryOrders fetches orders joined with their owning user's public fields,
// then fetches and attaches the expanded items for the whole id set in a
// second query.
func (r *OrderRepository) queryOrders(ctx context.Context, where string, args []any, includePrice bool) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.shipping_address1, o.shipping_address2, o.city, o.zip,
			o.country, o.phone, o.status, o.total_price, o.created_at, o.updated_at,
			u.id, u.name, u.email, u.phone, u.zip, u.country
		FROM orders o
		JOIN users u ON u.id = o.user_id
		`+where+`
		ORDER BY o.created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		user := &domain.UserSummary{}
		err := rows.Scan(&order.ID, &order.ShippingAddress1, &order.ShippingAddress2,
			&order.City, &order.Zip, &order.Country, &order.Phone, &order.Status,
			&order.TotalPrice, &order.CreatedAt, &order.UpdatedAt,
			&user.ID, &user.Name, &user.Email, &user.Phone, &user.Zip, &user.Country)
		if err != nil {
			return nil, err
		}
		order.User = user
		order.OrderItems = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.id, oi.quantity,
			p.id, p.name, p.description, p.price,
			c.id, c.name, c.color, c.icon
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE oi.order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		var price float64
		product := &domain.ProductSummary{Category: &domain.CategorySummary{}}
		err := itemRows.Scan(&orderID, &item.ID, &item.Quantity,
			&product.ID, &product.Name, &product.Description, &price,
			&product.Category.ID, &product.Category.Name,
			&product.Category.Color, &product.Category.Icon)
		if err != nil {
			return nil, err
		}
		if includePrice {
			product.Price = &price
		}
		item.Product = product
		order := orderMap[orderID]
		order.OrderItems = append(order.OrderItems, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
