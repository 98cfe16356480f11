package sales

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
)

// Repository persists sales in PostgreSQL.
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
	GetProduct(ctx context.Context, id int64) (ProductRef, error)
	LockRecipes(ctx context.Context, ids []int64) (map[int64]LockedRecipe, error)
	AddPrepared(ctx context.Context, recipeID int64, delta float64) error
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
}

type txRepo struct {
	q db.DBTX
}

const saleSelect = `SELECT s.id, s.product_id, p.name, p.recipe_id, s.quantity, s.unit_price, s.sold_at, p.price
FROM sales s
JOIN products p ON p.id = s.product_id`

// WithTx executes the callback inside a repeatable-read transaction, retrying serialization failures.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithRetryTx(ctx, r.pool, r.maxRetries, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

// List returns sales newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, saleSelect+`
WHERE ($1::timestamptz IS NULL OR s.sold_at >= $1)
  AND ($2::timestamptz IS NULL OR s.sold_at < $2)
ORDER BY s.sold_at DESC, s.id DESC
LIMIT $3 OFFSET $4`, filter.From, filter.To, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

// Get loads one sale.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, saleSelect+` WHERE s.id = $1`, id))
	if db.IsNoRows(err) {
		return Sale{}, ErrSaleNotFound
	}
	return sale, err
}

// Delete removes a sale record. Prepared quantity is left as is.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

// GetProduct reads the product under a share lock so it cannot be deleted mid-sale.
func (t *txRepo) GetProduct(ctx context.Context, id int64) (ProductRef, error) {
	var (
		p     ProductRef
		price pgtype.Numeric
	)
	err := t.q.QueryRow(ctx, `SELECT id, name, recipe_id, price, is_active FROM products WHERE id = $1 FOR SHARE`, id).
		Scan(&p.ID, &p.Name, &p.RecipeID, &price, &p.IsActive)
	if db.IsNoRows(err) {
		return ProductRef{}, ErrProductNotFound
	}
	p.Price = db.Decimal(price)
	return p, err
}

// LockRecipes locks the recipe rows in id order.
func (t *txRepo) LockRecipes(ctx context.Context, ids []int64) (map[int64]LockedRecipe, error) {
	rows, err := t.q.Query(ctx, `SELECT id, name, prepared_quantity FROM recipes
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]LockedRecipe, len(ids))
	for rows.Next() {
		var rec LockedRecipe
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.PreparedQuantity); err != nil {
			return nil, err
		}
		out[rec.ID] = rec
	}
	return out, rows.Err()
}

func (t *txRepo) AddPrepared(ctx context.Context, recipeID int64, delta float64) error {
	_, err := t.q.Exec(ctx, `UPDATE recipes SET prepared_quantity = prepared_quantity + $2, updated_at = NOW() WHERE id = $1`, recipeID, delta)
	return err
}

func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	err := t.q.QueryRow(ctx, `INSERT INTO sales (product_id, quantity, unit_price, sold_at)
VALUES ($1, $2, $3, $4)
RETURNING id, sold_at`, sale.ProductID, sale.Quantity, db.Numeric(sale.UnitPrice), sale.SoldAt).Scan(&sale.ID, &sale.SoldAt)
	return sale, err
}

func scanSale(row pgx.Row) (Sale, error) {
	var (
		sale         Sale
		unit, listed pgtype.Numeric
	)
	if err := row.Scan(&sale.ID, &sale.ProductID, &sale.ProductName, &sale.RecipeID, &sale.Quantity, &unit, &sale.SoldAt, &listed); err != nil {
		return Sale{}, err
	}
	sale.UnitPrice = db.Decimal(unit)
	sale.ProductPrice = db.Decimal(listed)
	return sale, nil
}
