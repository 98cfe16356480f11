package products

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

func TestHandlerProductRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	rr := do(r, http.MethodPost, "/products", `{"recipe":1,"name":"Baguette","price":"5.00"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "5.00", created.Price.String())
	require.Equal(t, "2.00", created.Cost.String())
	require.Equal(t, "3.00", created.Profit.String())
	require.InDelta(t, 60, created.ProfitMargin, 1e-9)
	require.True(t, created.IsActive)
	require.Equal(t, "Baguette", created.RecipeName)

	rr = do(r, http.MethodPatch, "/products/1", `{"is_active":false}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(r, http.MethodGet, "/products?is_active=true", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())

	rr = do(r, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHandlerProductErrors(t *testing.T) {
	r := newTestRouter(t)

	rr := do(r, http.MethodPost, "/products", `{"recipe":1,"name":"Baguette"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/products", `{"recipe":1,"name":"Baguette","price":"cheap"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/products", `{"recipe":7,"name":"Baguette","price":1}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(r, http.MethodGet, "/products?is_active=maybe", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodGet, "/products/5", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
