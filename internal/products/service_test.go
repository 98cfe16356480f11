package products

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

type memoryRepo struct {
	mu       sync.Mutex
	products map[int64]Product
	recipes  map[int64]string
	sold     map[int64]bool
	next     int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[int64]Product),
		recipes:  map[int64]string{1: "Baguette", 2: "Croissant"},
		sold:     make(map[int64]bool),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make(map[int64]Product, len(r.products))
	for k, v := range r.products {
		snapshot[k] = v
	}
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.products = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) List(ctx context.Context, filter Filter) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Active != nil && p.IsActive != *filter.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, in CreateInput) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.recipes[in.RecipeID]
	if !ok {
		return 0, ErrRecipeNotFound
	}
	r.next++
	r.products[r.next] = Product{
		ID: r.next, RecipeID: in.RecipeID, RecipeName: name, Name: in.Name,
		Price: in.Price, IsActive: in.IsActive, CreatedAt: time.Now().UTC(),
	}
	return r.next, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	if r.sold[id] {
		return ErrProductHasSales
	}
	delete(r.products, id)
	return nil
}

func (t *memoryTx) GetForUpdate(ctx context.Context, id int64) (Product, error) {
	p, ok := t.repo.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (t *memoryTx) Update(ctx context.Context, p Product) error {
	name, ok := t.repo.recipes[p.RecipeID]
	if !ok {
		return ErrRecipeNotFound
	}
	p.RecipeName = name
	t.repo.products[p.ID] = p
	return nil
}

type staticCosts map[int64]decimal.Decimal

func (c staticCosts) Costs(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(ids))
	for _, id := range ids {
		out[id] = c[id]
	}
	return out, nil
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func newFixture(t *testing.T) (*Service, *memoryRepo, *countingCache) {
	t.Helper()
	repo := newMemoryRepo()
	costs := staticCosts{1: decimal.RequireFromString("2.00"), 2: decimal.Zero}
	cache := &countingCache{}
	return NewService(repo, costs, cache, nil), repo, cache
}

func TestServiceCreateDerivesProfit(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{RecipeID: 1, Name: "Baguette", Price: decimal.RequireFromString("5.00"), IsActive: true})
	require.NoError(t, err)
	require.Equal(t, "2", p.Cost.String())
	require.Equal(t, "3", p.Profit().String())
	require.InDelta(t, 60, p.ProfitMargin(), 1e-9)

	free, err := svc.Create(ctx, CreateInput{RecipeID: 2, Name: "Croissant", Price: decimal.RequireFromString("3.00"), IsActive: true})
	require.NoError(t, err)
	require.InDelta(t, 100, free.ProfitMargin(), 1e-9)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	cases := []CreateInput{
		{RecipeID: 0, Name: "X", Price: decimal.NewFromInt(1)},
		{RecipeID: 1, Name: "  ", Price: decimal.NewFromInt(1)},
		{RecipeID: 1, Name: "X", Price: decimal.NewFromInt(-1)},
		{RecipeID: 1, Name: "X", Price: decimal.RequireFromString("1.005")},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, in)
		require.ErrorIs(t, err, shared.ErrInvalidArgument)
	}

	_, err := svc.Create(ctx, CreateInput{RecipeID: 9, Name: "X", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceUpdateAndDelete(t *testing.T) {
	svc, repo, cache := newFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{RecipeID: 1, Name: "Baguette", Price: decimal.RequireFromString("5.00"), IsActive: true})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, p.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.Zero(t, cache.bumps)

	recipe := int64(2)
	updated, err = svc.Update(ctx, p.ID, UpdateInput{RecipeID: &recipe})
	require.NoError(t, err)
	require.Equal(t, "Croissant", updated.RecipeName)
	require.Equal(t, 1, cache.bumps)

	bad := decimal.NewFromInt(-2)
	_, err = svc.Update(ctx, p.ID, UpdateInput{Price: &bad})
	require.ErrorIs(t, err, shared.ErrInvalidArgument)

	active := true
	items, err := svc.List(ctx, Filter{Active: &active})
	require.NoError(t, err)
	require.Empty(t, items)

	repo.sold[p.ID] = true
	require.ErrorIs(t, svc.Delete(ctx, p.ID), shared.ErrReferenced)

	repo.sold[p.ID] = false
	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMargin(t *testing.T) {
	require.InDelta(t, 100, Margin(decimal.Zero, decimal.Zero), 1e-9)
	require.InDelta(t, 0, Margin(decimal.Zero, decimal.NewFromInt(1)), 1e-9)
	require.InDelta(t, -100, Margin(decimal.NewFromInt(1), decimal.NewFromInt(2)), 1e-9)
}
