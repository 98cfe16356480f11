package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

func TestRespondErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		title  string
	}{
		{fmt.Errorf("%w: amount must be positive", shared.ErrInvalidArgument), http.StatusBadRequest, "Invalid Argument"},
		{fmt.Errorf("%w: need 4, have 1", shared.ErrInsufficientStock), http.StatusBadRequest, "Insufficient Stock"},
		{shared.ErrNotFound, http.StatusNotFound, "Not Found"},
		{shared.ErrDuplicate, http.StatusConflict, "Duplicate"},
		{shared.ErrReferenced, http.StatusConflict, "Referenced"},
		{shared.ErrRetryable, http.StatusServiceUnavailable, "Conflict"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), nil, tc.err)
		require.Equal(t, tc.status, rr.Code)

		var problem ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
		require.Equal(t, tc.title, problem.Title)
		require.NotContains(t, problem.Detail, "connection reset")
	}
}

func TestRespondErrorRetryAfter(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, nil, shared.ErrRetryable)
	require.Equal(t, RetryAfterSeconds, rr.Header().Get("Retry-After"))
}

func TestNumberAcceptsStringsAndNumbers(t *testing.T) {
	var body struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 2.5, "b": "3", "c": "abc"}`), &body))

	a, err := body.A.Float("a")
	require.NoError(t, err)
	require.InDelta(t, 2.5, a, 1e-9)

	b, err := body.B.Int("b")
	require.NoError(t, err)
	require.Equal(t, 3, b)

	_, err = body.C.Float("c")
	require.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestDecodeJSONRejectsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var target map[string]any
	require.ErrorIs(t, DecodeJSON(req, &target), shared.ErrInvalidArgument)
}

func TestMoneyFixedPlaces(t *testing.T) {
	out, err := json.Marshal(map[string]any{"price": Money(decimal.RequireFromString("5"), 2)})
	require.NoError(t, err)
	require.JSONEq(t, `{"price": 5.00}`, string(out))
}

func TestValidateNamesJSONFields(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required,max=5"`
		Unit string `json:"unit" validate:"required"`
	}
	err := Validate(input{Name: "croissant", Unit: ""})
	require.ErrorIs(t, err, shared.ErrInvalidArgument)
	require.Contains(t, err.Error(), "name must be at most 5 characters")
	require.Contains(t, err.Error(), "unit is required")

	require.NoError(t, Validate(input{Name: "bun", Unit: "pc"}))
}
