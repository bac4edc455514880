package categories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/mfontenla/easyshop-api/internal/domain"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, icon, created_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, icon, created_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	c.ID = uuid.New().String()
	return r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, color, icon, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`, c.ID, c.Name, c.Color, c.Icon).Scan(&c.CreatedAt)
}

// Update overwrites the category fields. Returns (nil, nil) when absent.
func (r *CategoryRepository) Update(ctx context.Context, id string, c *domain.Category) (*domain.Category, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, color = $2, icon = $3
		WHERE id = $4
	`, c.Name, c.Color, c.Icon, id)
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

func (r *CategoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
