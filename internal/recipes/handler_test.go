package recipes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	svc, _, _ := newFixture(t)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandlerRecipeRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	rr := do(r, http.MethodPost, "/recipes", `{"name":"Baguette","preparation_time":30,"ingredients":[{"ingredient":1,"quantity":"250"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created RecipeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "0.50000", created.Cost.String())
	require.Equal(t, created.Cost, created.CostPerServing)
	require.InDelta(t, 4, created.MaxPortions, 1e-9)
	require.True(t, created.CanMake)
	require.Len(t, created.IngredientsDetail, 1)
	require.Equal(t, "Flour", created.IngredientsDetail[0].IngredientName)

	rr = do(r, http.MethodPut, "/recipes/1/ingredients", `{"ingredients":[{"ingredient":2,"quantity":200}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var replaced RecipeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &replaced))
	require.False(t, replaced.CanMake)
	require.InDelta(t, 0.5, replaced.MaxPortions, 1e-9)
	require.Zero(t, replaced.PreparedQuantity)

	rr = do(r, http.MethodGet, "/recipe-ingredients?recipe=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"ingredient":2`)
}

func TestHandlerRecipeErrors(t *testing.T) {
	r := newTestRouter(t)

	rr := do(r, http.MethodPost, "/recipes", `{"name":"X","ingredients":[{"ingredient":1,"quantity":"lots"}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/recipes", `{"ingredients":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodGet, "/recipes/9", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(r, http.MethodPost, "/recipe-ingredients", `{"recipe":9,"ingredient":1,"quantity":1}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(r, http.MethodGet, "/recipe-ingredients?recipe=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
