package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mfontenla/easyshop-api/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListFilter narrows the public product listing. Zero values mean no filter.
type ListFilter struct {
	CategoryIDs []string
	Featured    *bool
	Limit       int
}

const productColumns = `
	p.id, p.name, p.description, p.rich_description, p.image, p.brand,
	p.price, p.count_in_stock, p.rating, p.num_reviews, p.is_featured,
	p.created_at, p.updated_at,
	c.id, c.name, c.color, c.icon, c.created_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{Category: &domain.Category{}}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.RichDescription, &p.Image,
		&p.Brand, &p.Price, &p.CountInStock, &p.Rating, &p.NumReviews, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Color, &p.Category.Icon,
		&p.Category.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id`

	var clauses []string
	var args []any
	if len(filter.CategoryIDs) > 0 {
		args = append(args, pq.Array(filter.CategoryIDs))
		clauses = append(clauses, fmt.Sprintf("p.category_id = ANY($%d)", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		clauses = append(clauses, fmt.Sprintf("p.is_featured = $%d", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += "\n\t\tWHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += "\n\t\tORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product, categoryID string) error {
	p.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, description, rich_description, image, brand,
			price, category_id, count_in_stock, rating, num_reviews, is_featured,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Description, p.RichDescription, p.Image, p.Brand,
		p.Price, categoryID, p.CountInStock, p.Rating, p.NumReviews, p.IsFeatured).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	created, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// Update overwrites the product fields. Returns (nil, nil) when absent.
func (r *ProductRepository) Update(ctx context.Context, id string, p *domain.Product, categoryID string) (*domain.Product, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, rich_description = $3, image = $4,
			brand = $5, price = $6, category_id = $7, count_in_stock = $8,
			rating = $9, num_reviews = $10, is_featured = $11, updated_at = NOW()
		WHERE id = $12
	`, p.Name, p.Description, p.RichDescription, p.Image, p.Brand, p.Price,
		categoryID, p.CountInStock, p.Rating, p.NumReviews, p.IsFeatured, id)
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

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// CategoryExists reports whether the id resolves to a stored category.
func (r *ProductRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
