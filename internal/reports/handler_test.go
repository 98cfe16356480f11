package reports

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	svc, _ := newTestService(t, nil)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHandlerReport(t *testing.T) {
	r := newTestRouter(t)

	rr := get(r, "/sales/report?start_date=2024-03-04&end_date=2024-03-04&period=day")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.JSONEq(t, `{"data":[{"period":"2024-03-04","transactions":1,"total_sales":15.00,"items_sold":3,"cost":6.00,"profit":9.00,"profit_margin":60}]}`, rr.Body.String())

	rr = get(r, "/sales/report?start_date=2024-03-04&end_date=2024-03-04&period=year")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = get(r, "/sales/report?end_date=2024-03-04")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerDashboard(t *testing.T) {
	r := newTestRouter(t)

	rr := get(r, "/sales/dashboard")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out dashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "5.00", out.Today.Revenue.String())
	require.Equal(t, "3.00", out.Today.Profit.String())
	require.Len(t, out.ChartData, 7)
	require.Equal(t, "0.00", out.ChartData[3].TotalSales.String())
}
