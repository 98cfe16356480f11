package ingredients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*chi.Mux, *Service) {
	svc := NewService(newMemoryRepo(), nil, nil, nil)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCreateAndRestock(t *testing.T) {
	r, _ := newTestRouter()

	rr := do(r, http.MethodPost, "/ingredients", `{"name":"Butter","quantity":"10","unit":"g","min_threshold":2,"cost_per_unit":"0.05"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"cost_per_unit":0.05000`)

	var created IngredientResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "Butter", created.Name)

	rr = do(r, http.MethodPost, "/ingredients/1/restock", `{"amount": 5}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var restocked IngredientResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &restocked))
	require.InDelta(t, 15, restocked.Quantity, 1e-9)
}

func TestHandlerRestockRejectsBadAmount(t *testing.T) {
	r, _ := newTestRouter()
	rr := do(r, http.MethodPost, "/ingredients", `{"name":"Eggs","quantity":12,"unit":"pcs"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	for _, body := range []string{`{"amount": 0}`, `{"amount": -3}`, `{"amount": "many"}`, `{}`} {
		rr = do(r, http.MethodPost, "/ingredients/1/restock", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestHandlerValidationAndNotFound(t *testing.T) {
	r, _ := newTestRouter()

	rr := do(r, http.MethodPost, "/ingredients", `{"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "name is required")

	rr = do(r, http.MethodGet, "/ingredients/42", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(r, http.MethodGet, "/ingredients/abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerDuplicateName(t *testing.T) {
	r, _ := newTestRouter()
	body := `{"name":"Salt","unit":"g"}`
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/ingredients", body).Code)
	require.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/ingredients", body).Code)
}

func TestHandlerPatchAndDelete(t *testing.T) {
	r, _ := newTestRouter()
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/ingredients", `{"name":"Milk","unit":"ml"}`).Code)

	rr := do(r, http.MethodPatch, "/ingredients/1", `{"min_threshold": 250}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"is_low_stock":true`)

	rr = do(r, http.MethodGet, "/ingredients/low-stock", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Milk")

	require.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/ingredients/1", "").Code)
	require.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/ingredients/1", "").Code)
}
