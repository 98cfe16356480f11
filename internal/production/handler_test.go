package production

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

func newTestRouter() (http.Handler, *memoryRepo) {
	repo := newMemoryRepo()
	repo.stock[1] = 10
	repo.addRecipe(1, "Roll", map[int64]float64{1: 2})
	svc := NewService(repo, nil, &memoryIdempotency{}, nil, nil, nil)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r, repo
}

func post(r http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandlerPrepareDefaultsToOneUnit(t *testing.T) {
	r, repo := newTestRouter()

	rr := post(r, "/recipes/1/prepare", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body prepareResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Successfully prepared 1 of Roll", body.Message)
	require.InDelta(t, 1, body.Production.Quantity, 1e-9)
	require.InDelta(t, 8, repo.stockOf(1), 1e-9)
}

func TestHandlerPrepareErrors(t *testing.T) {
	r, repo := newTestRouter()

	rr := post(r, "/recipes/1/prepare", `{"quantity":"abc"}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(r, "/recipes/1/prepare", `{"quantity":0}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(r, "/recipes/1/prepare", `{"quantity":6}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Insufficient Stock")

	rr = post(r, "/recipes/2/prepare", `{"quantity":1}`, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(r, "/recipes/1/prepare", `{"quantity":1}`, map[string]string{shared.IdempotencyHeader: "nope"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	require.InDelta(t, 10, repo.stockOf(1), 1e-9)
}

func TestHandlerIdempotentReplay(t *testing.T) {
	r, repo := newTestRouter()
	headers := map[string]string{shared.IdempotencyHeader: "0b9f2c1e-4a55-4f0e-9a4e-1d2f3c4b5a69"}

	require.Equal(t, http.StatusCreated, post(r, "/production-records", `{"recipe":1,"quantity":2}`, headers).Code)
	require.Equal(t, http.StatusConflict, post(r, "/production-records", `{"recipe":1,"quantity":2}`, headers).Code)
	require.InDelta(t, 2, repo.prepared(1), 1e-9)
}

func TestHandlerListAndSummary(t *testing.T) {
	r, _ := newTestRouter()
	require.Equal(t, http.StatusOK, post(r, "/recipes/1/prepare", `{"quantity":2,"notes":"batch"}`, nil).Code)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/production-records?recipe=1&limit=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []RecordResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "batch", list[0].Notes)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/production-records/summary", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"top_recipes"`)
	require.Contains(t, rr.Body.String(), `"daily_production"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/production-records/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/production-records?limit=-1", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
