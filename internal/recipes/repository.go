package recipes

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
)

// Repository persists recipes and their requirement lines in PostgreSQL.
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
	Insert(ctx context.Context, in RecipeInput) (Recipe, error)
	GetForUpdate(ctx context.Context, id int64) (Recipe, error)
	Update(ctx context.Context, rec Recipe) (Recipe, error)
	MissingIngredients(ctx context.Context, ids []int64) ([]int64, error)
	ReplaceRequirements(ctx context.Context, recipeID int64, lines []RequirementInput) error
	InsertRequirement(ctx context.Context, recipeID int64, line RequirementInput) (int64, error)
	GetRequirementForUpdate(ctx context.Context, id int64) (Requirement, error)
	UpdateRequirementQuantity(ctx context.Context, id int64, qty float64) error
}

type txRepo struct {
	q db.DBTX
}

const recipeColumns = `id, name, instructions, preparation_time, prepared_quantity, image, created_at, updated_at`

const requirementSelect = `SELECT ri.id, ri.recipe_id, ri.ingredient_id, i.name, i.unit, ri.quantity, i.quantity, i.cost_per_unit
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id`

// WithTx executes the callback inside a repeatable-read transaction, retrying serialization failures.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithRetryTx(ctx, r.pool, r.maxRetries, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

// List returns recipes ordered by name, without requirements.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get loads one recipe without requirements.
func (r *Repository) Get(ctx context.Context, id int64) (Recipe, error) {
	rec, err := scanRecipe(r.pool.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return Recipe{}, ErrRecipeNotFound
	}
	return rec, err
}

// Delete removes a recipe. Requirement lines, products and production records cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// RequirementsByRecipe groups requirement lines by recipe. A nil id slice loads every recipe.
func (r *Repository) RequirementsByRecipe(ctx context.Context, recipeIDs []int64) (map[int64][]Requirement, error) {
	query := requirementSelect + ` ORDER BY ri.recipe_id, i.name`
	args := []any{}
	if recipeIDs != nil {
		query = requirementSelect + ` WHERE ri.recipe_id = ANY($1) ORDER BY ri.recipe_id, i.name`
		args = append(args, recipeIDs)
	}
	reqs, err := r.queryRequirements(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	grouped := make(map[int64][]Requirement)
	for _, req := range reqs {
		grouped[req.RecipeID] = append(grouped[req.RecipeID], req)
	}
	return grouped, nil
}

// ListRequirements lists requirement lines, optionally for one recipe.
func (r *Repository) ListRequirements(ctx context.Context, filter RequirementFilter) ([]Requirement, error) {
	if filter.RecipeID > 0 {
		return r.queryRequirements(ctx, requirementSelect+` WHERE ri.recipe_id = $1 ORDER BY ri.id`, filter.RecipeID)
	}
	return r.queryRequirements(ctx, requirementSelect+` ORDER BY ri.id`)
}

// GetRequirement loads one requirement line.
func (r *Repository) GetRequirement(ctx context.Context, id int64) (Requirement, error) {
	req, err := scanRequirement(r.pool.QueryRow(ctx, requirementSelect+` WHERE ri.id = $1`, id))
	if db.IsNoRows(err) {
		return Requirement{}, ErrRequirementNotFound
	}
	return req, err
}

// DeleteRequirement removes one requirement line.
func (r *Repository) DeleteRequirement(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipe_ingredients WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequirementNotFound
	}
	return nil
}

func (r *Repository) queryRequirements(ctx context.Context, query string, args ...any) ([]Requirement, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (t *txRepo) Insert(ctx context.Context, in RecipeInput) (Recipe, error) {
	return scanRecipe(t.q.QueryRow(ctx, `INSERT INTO recipes (name, instructions, preparation_time, image)
VALUES ($1, $2, $3, $4)
RETURNING `+recipeColumns, in.Name, in.Instructions, in.PreparationTime, in.Image))
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (Recipe, error) {
	rec, err := scanRecipe(t.q.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1 FOR UPDATE`, id))
	if db.IsNoRows(err) {
		return Recipe{}, ErrRecipeNotFound
	}
	return rec, err
}

func (t *txRepo) Update(ctx context.Context, rec Recipe) (Recipe, error) {
	updated, err := scanRecipe(t.q.QueryRow(ctx, `UPDATE recipes
SET name = $2, instructions = $3, preparation_time = $4, image = $5, updated_at = $6
WHERE id = $1
RETURNING `+recipeColumns, rec.ID, rec.Name, rec.Instructions, rec.PreparationTime, rec.Image, time.Now().UTC()))
	if db.IsNoRows(err) {
		return Recipe{}, ErrRecipeNotFound
	}
	return updated, err
}

func (t *txRepo) MissingIngredients(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := t.q.Query(ctx, `SELECT want.id
FROM unnest($1::bigint[]) AS want(id)
LEFT JOIN ingredients i ON i.id = want.id
WHERE i.id IS NULL`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (t *txRepo) ReplaceRequirements(ctx context.Context, recipeID int64, lines []RequirementInput) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := t.InsertRequirement(ctx, recipeID, line); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) InsertRequirement(ctx context.Context, recipeID int64, line RequirementInput) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, `INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity)
VALUES ($1, $2, $3)
RETURNING id`, recipeID, line.IngredientID, line.Quantity).Scan(&id)
	return id, err
}

func (t *txRepo) GetRequirementForUpdate(ctx context.Context, id int64) (Requirement, error) {
	req, err := scanRequirement(t.q.QueryRow(ctx, requirementSelect+` WHERE ri.id = $1 FOR UPDATE OF ri`, id))
	if db.IsNoRows(err) {
		return Requirement{}, ErrRequirementNotFound
	}
	return req, err
}

func (t *txRepo) UpdateRequirementQuantity(ctx context.Context, id int64, qty float64) error {
	tag, err := t.q.Exec(ctx, `UPDATE recipe_ingredients SET quantity = $2 WHERE id = $1`, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequirementNotFound
	}
	return nil
}

func scanRecipe(row pgx.Row) (Recipe, error) {
	var rec Recipe
	err := row.Scan(&rec.ID, &rec.Name, &rec.Instructions, &rec.PreparationTime, &rec.PreparedQuantity, &rec.Image, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func scanRequirement(row pgx.Row) (Requirement, error) {
	var (
		req  Requirement
		cost pgtype.Numeric
	)
	if err := row.Scan(&req.ID, &req.RecipeID, &req.IngredientID, &req.IngredientName, &req.IngredientUnit, &req.Quantity, &req.Stock, &cost); err != nil {
		return Requirement{}, err
	}
	req.CostPerUnit = db.Decimal(cost)
	return req, nil
}
