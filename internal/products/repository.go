package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool       *pgxpool.Pool
	maxRetries int
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, maxRetries int) *Repository {
	return &Repository{pool: pool, maxRetries: maxRetries}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (Product, error)
	Update(ctx context.Context, p Product) error
}

type txRepo struct {
	q db.DBTX
}

const productSelect = `SELECT p.id, p.recipe_id, r.name, r.prepared_quantity, p.name, p.price, p.is_active, p.created_at
FROM products p
JOIN recipes r ON r.id = p.recipe_id`

// WithTx executes the callback inside a repeatable-read transaction, retrying serialization failures.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithRetryTx(ctx, r.pool, r.maxRetries, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

// List returns products ordered by name.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+`
WHERE ($1::boolean IS NULL OR p.is_active = $1)
ORDER BY p.name, p.id`, filter.Active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get loads one product.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if db.IsNoRows(err) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

// Create inserts a product and returns its id.
func (r *Repository) Create(ctx context.Context, in CreateInput) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products (recipe_id, name, price, is_active)
VALUES ($1, $2, $3, $4)
RETURNING id`, in.RecipeID, in.Name, db.Numeric(in.Price), in.IsActive).Scan(&id)
	if err != nil {
		return 0, recipeViolation(db.Classify(err))
	}
	return id, nil
}

// Delete removes a product. Recorded sales block the delete.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		err = db.Classify(err)
		if errors.Is(err, shared.ErrReferenced) {
			return ErrProductHasSales
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(t.q.QueryRow(ctx, productSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id))
	if db.IsNoRows(err) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (t *txRepo) Update(ctx context.Context, p Product) error {
	_, err := t.q.Exec(ctx, `UPDATE products SET recipe_id = $2, name = $3, price = $4, is_active = $5 WHERE id = $1`,
		p.ID, p.RecipeID, p.Name, db.Numeric(p.Price), p.IsActive)
	if err != nil {
		return recipeViolation(db.Classify(err))
	}
	return nil
}

func recipeViolation(err error) error {
	if errors.Is(err, shared.ErrReferenced) {
		return ErrRecipeNotFound
	}
	return err
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price pgtype.Numeric
	)
	if err := row.Scan(&p.ID, &p.RecipeID, &p.RecipeName, &p.PreparedQuantity, &p.Name, &price, &p.IsActive, &p.CreatedAt); err != nil {
		return Product{}, err
	}
	p.Price = db.Decimal(price)
	return p, nil
}
