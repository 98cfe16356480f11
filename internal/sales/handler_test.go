package sales

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

func newTestRouter(t *testing.T) (http.Handler, fixture) {
	f := newFixture(t)
	r := chi.NewRouter()
	NewHandler(nil, f.svc).MountRoutes(r)
	return r, f
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandlerSell(t *testing.T) {
	r, f := newTestRouter(t)

	rr := do(r, http.MethodPost, "/sales", `{"product":1,"quantity":"3"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var sale SaleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sale))
	require.Equal(t, "15.00", sale.TotalPrice.String())
	require.Equal(t, "9.00", sale.Profit.String())
	require.Equal(t, "5.00", sale.UnitPrice.String())
	require.Equal(t, "Baguette", sale.ProductName)

	rr = do(r, http.MethodPost, "/sales", `{"product":1,"quantity":5}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Insufficient Stock")
	require.InDelta(t, 1, f.repo.prepared(10), 1e-9)

	rr = do(r, http.MethodGet, "/sales/1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(r, http.MethodGet, "/sales?from=2024-03-04&to=2024-03-04", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []SaleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rr = do(r, http.MethodDelete, "/sales/1", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.InDelta(t, 1, f.repo.prepared(10), 1e-9)
}

func TestHandlerSellErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := do(r, http.MethodPost, "/sales", `{"product":1,"quantity":1.5}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/sales", `{"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/sales", `{"product":1,"quantity":1}`, shared.IdempotencyHeader, "not-a-uuid")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodGet, "/sales?from=yesterday", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodGet, "/sales/7", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerCheckout(t *testing.T) {
	r, f := newTestRouter(t)

	rr := do(r, http.MethodPost, "/sales/checkout", `{"items":[{"product":1,"quantity":2},{"product":3,"quantity":2,"unit_price":"2.00"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var out checkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Sales, 2)
	require.Equal(t, "14.00", out.TotalPrice.String())
	require.Zero(t, f.repo.prepared(20))

	rr = do(r, http.MethodPost, "/sales/checkout", `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/sales/checkout", `{"items":[{"product":1,"quantity":1},{"product":3,"quantity":1}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.InDelta(t, 2, f.repo.prepared(10), 1e-9)
}
