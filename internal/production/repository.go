package production

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
	"github.com/odyssey-erp/odyssey-bakery/internal/recipes"
)

// Repository persists production records and applies stock movements in PostgreSQL.
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
	LockRecipe(ctx context.Context, id int64) (LockedRecipe, error)
	LockRequirements(ctx context.Context, recipeID int64) ([]recipes.Requirement, error)
	SetStock(ctx context.Context, ingredientID int64, qty float64) error
	AddPrepared(ctx context.Context, recipeID int64, delta float64) (float64, error)
	InsertRecord(ctx context.Context, rec Record) (Record, error)
}

type txRepo struct {
	q db.DBTX
}

const recordSelect = `SELECT p.id, p.recipe_id, r.name, p.quantity, p.notes, p.produced_at
FROM production_records p
JOIN recipes r ON r.id = p.recipe_id`

// WithTx executes the callback inside a repeatable-read transaction, retrying serialization failures.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithRetryTx(ctx, r.pool, r.maxRetries, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

// List returns records newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Record, error) {
	rows, err := r.pool.Query(ctx, recordSelect+`
WHERE ($1::bigint = 0 OR p.recipe_id = $1)
ORDER BY p.produced_at DESC, p.id DESC
LIMIT $2 OFFSET $3`, filter.RecipeID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get loads one record.
func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, recordSelect+` WHERE p.id = $1`, id))
	if db.IsNoRows(err) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

// TopRecipes ranks recipes by total produced quantity.
func (r *Repository) TopRecipes(ctx context.Context, limit int) ([]RecipeTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.recipe_id, r.name, SUM(p.quantity), COUNT(*)
FROM production_records p
JOIN recipes r ON r.id = p.recipe_id
GROUP BY p.recipe_id, r.name
ORDER BY SUM(p.quantity) DESC, r.name
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecipeTotal
	for rows.Next() {
		var t RecipeTotal
		if err := rows.Scan(&t.RecipeID, &t.RecipeName, &t.TotalQuantity, &t.Runs); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DailySince aggregates runs per day in loc since the given instant.
func (r *Repository) DailySince(ctx context.Context, since time.Time, loc *time.Location) ([]DailyTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_char(produced_at AT TIME ZONE $2, 'YYYY-MM-DD') AS day, COUNT(*), SUM(quantity)
FROM production_records
WHERE produced_at >= $1
GROUP BY day
ORDER BY day`, since, loc.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.Count, &d.TotalQuantity); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (t *txRepo) LockRecipe(ctx context.Context, id int64) (LockedRecipe, error) {
	var rec LockedRecipe
	err := t.q.QueryRow(ctx, `SELECT id, name, prepared_quantity FROM recipes WHERE id = $1 FOR UPDATE`, id).
		Scan(&rec.ID, &rec.Name, &rec.PreparedQuantity)
	if db.IsNoRows(err) {
		return LockedRecipe{}, ErrRecipeNotFound
	}
	return rec, err
}

// LockRequirements locks the recipe's ingredient rows in id order so concurrent runs sharing
// ingredients acquire locks in the same sequence.
func (t *txRepo) LockRequirements(ctx context.Context, recipeID int64) ([]recipes.Requirement, error) {
	rows, err := t.q.Query(ctx, `SELECT ri.id, ri.recipe_id, ri.ingredient_id, i.name, i.unit, ri.quantity, i.quantity, i.cost_per_unit
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id = $1
ORDER BY i.id
FOR UPDATE OF i`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []recipes.Requirement
	for rows.Next() {
		var (
			req  recipes.Requirement
			cost pgtype.Numeric
		)
		if err := rows.Scan(&req.ID, &req.RecipeID, &req.IngredientID, &req.IngredientName, &req.IngredientUnit, &req.Quantity, &req.Stock, &cost); err != nil {
			return nil, err
		}
		req.CostPerUnit = db.Decimal(cost)
		out = append(out, req)
	}
	return out, rows.Err()
}

func (t *txRepo) SetStock(ctx context.Context, ingredientID int64, qty float64) error {
	_, err := t.q.Exec(ctx, `UPDATE ingredients SET quantity = $2, updated_at = NOW() WHERE id = $1`, ingredientID, qty)
	return err
}

func (t *txRepo) AddPrepared(ctx context.Context, recipeID int64, delta float64) (float64, error) {
	var prepared float64
	err := t.q.QueryRow(ctx, `UPDATE recipes SET prepared_quantity = prepared_quantity + $2, updated_at = NOW()
WHERE id = $1
RETURNING prepared_quantity`, recipeID, delta).Scan(&prepared)
	if db.IsNoRows(err) {
		return 0, ErrRecipeNotFound
	}
	return prepared, err
}

func (t *txRepo) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	err := t.q.QueryRow(ctx, `INSERT INTO production_records (recipe_id, quantity, notes, produced_at)
VALUES ($1, $2, $3, $4)
RETURNING id, produced_at`, rec.RecipeID, rec.Quantity, rec.Notes, rec.ProducedAt).Scan(&rec.ID, &rec.ProducedAt)
	return rec, err
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.RecipeID, &rec.RecipeName, &rec.Quantity, &rec.Notes, &rec.ProducedAt)
	return rec, err
}
