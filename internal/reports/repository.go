package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/db"
)

// Repository reads sale facts from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Facts returns sales with from <= sold_at < to.
func (r *Repository) Facts(ctx context.Context, from, to time.Time) ([]Fact, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.sold_at, s.quantity, s.unit_price, p.recipe_id
FROM sales s
JOIN products p ON p.id = s.product_id
WHERE s.sold_at >= $1 AND s.sold_at < $2
ORDER BY s.sold_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Fact
	for rows.Next() {
		var (
			f     Fact
			price pgtype.Numeric
		)
		if err := rows.Scan(&f.SoldAt, &f.Quantity, &price, &f.RecipeID); err != nil {
			return nil, err
		}
		f.UnitPrice = db.Decimal(price)
		out = append(out, f)
	}
	return out, rows.Err()
}
