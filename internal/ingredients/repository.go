package ingredients

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
)

// Repository persists ingredients in PostgreSQL.
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
	GetForUpdate(ctx context.Context, id int64) (Ingredient, error)
	Update(ctx context.Context, ing Ingredient) (Ingredient, error)
}

type txRepo struct {
	q db.DBTX
}

const ingredientColumns = `id, name, quantity, unit, min_threshold, cost_per_unit, created_at, updated_at`

// WithTx executes the callback inside a repeatable-read transaction, retrying serialization failures.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithRetryTx(ctx, r.pool, r.maxRetries, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

// List returns every ingredient ordered by name.
func (r *Repository) List(ctx context.Context) ([]Ingredient, error) {
	return r.list(ctx, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name`)
}

// ListLowStock returns ingredients at or below their threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]Ingredient, error) {
	return r.list(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE quantity <= min_threshold ORDER BY name`)
}

func (r *Repository) list(ctx context.Context, query string) ([]Ingredient, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// Get loads one ingredient.
func (r *Repository) Get(ctx context.Context, id int64) (Ingredient, error) {
	ing, err := scanIngredient(r.pool.QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return Ingredient{}, ErrIngredientNotFound
	}
	return ing, err
}

// Create inserts a new ingredient.
func (r *Repository) Create(ctx context.Context, in CreateInput) (Ingredient, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO ingredients (name, quantity, unit, min_threshold, cost_per_unit)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+ingredientColumns, in.Name, in.Quantity, in.Unit, in.MinThreshold, db.Numeric(in.CostPerUnit))
	ing, err := scanIngredient(row)
	if err != nil {
		return Ingredient{}, db.Classify(err)
	}
	return ing, nil
}

// Delete removes an ingredient. Requirement rows cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}
	return nil
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (Ingredient, error) {
	ing, err := scanIngredient(t.q.QueryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1 FOR UPDATE`, id))
	if db.IsNoRows(err) {
		return Ingredient{}, ErrIngredientNotFound
	}
	return ing, err
}

func (t *txRepo) Update(ctx context.Context, ing Ingredient) (Ingredient, error) {
	row := t.q.QueryRow(ctx, `UPDATE ingredients
SET name = $2, quantity = $3, unit = $4, min_threshold = $5, cost_per_unit = $6, updated_at = $7
WHERE id = $1
RETURNING `+ingredientColumns,
		ing.ID, ing.Name, ing.Quantity, ing.Unit, ing.MinThreshold, db.Numeric(ing.CostPerUnit), time.Now().UTC())
	updated, err := scanIngredient(row)
	if db.IsNoRows(err) {
		return Ingredient{}, ErrIngredientNotFound
	}
	return updated, err
}

func scanIngredient(row pgx.Row) (Ingredient, error) {
	var (
		ing  Ingredient
		cost pgtype.Numeric
	)
	if err := row.Scan(&ing.ID, &ing.Name, &ing.Quantity, &ing.Unit, &ing.MinThreshold, &cost, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
		return Ingredient{}, err
	}
	ing.CostPerUnit = db.Decimal(cost)
	return ing, nil
}
