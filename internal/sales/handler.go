package sales

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// Handler serves the sales endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sales routes. Routes are flat so the reporting endpoints can share the
// /sales prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.list)
	r.Post("/sales", h.sell)
	r.Post("/sales/checkout", h.checkout)
	r.Get("/sales/{id}", h.get)
	r.Delete("/sales/{id}", h.delete)
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	line, err := req.toLine()
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	key, err := shared.ParseIdempotencyKey(r.Header.Get(shared.IdempotencyHeader))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	sale, err := h.service.Sell(r.Context(), SellInput{Line: line, SoldAt: req.Timestamp, IdempotencyKey: key})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewSaleResponse(sale))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	lines := make([]Line, 0, len(req.Items))
	for i, item := range req.Items {
		line, err := item.toLine()
		if err != nil {
			httpx.RespondError(w, r, h.logger, fmt.Errorf("item %d: %w", i+1, err))
			return
		}
		lines = append(lines, line)
	}
	key, err := shared.ParseIdempotencyKey(r.Header.Get(shared.IdempotencyHeader))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	items, err := h.service.Checkout(r.Context(), CheckoutInput{Lines: lines, SoldAt: req.Timestamp, IdempotencyKey: key})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newCheckoutResponse(items))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	out := make([]SaleResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewSaleResponse(s))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSaleResponse(sale))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseFilter reads limit, offset and an optional from/to window. Dates are RFC3339 instants or
// YYYY-MM-DD days in UTC; a bare to date includes the whole day.
func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var filter Filter
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Filter{}, fmt.Errorf("%w: invalid %s %q", shared.ErrInvalidArgument, name, raw)
		}
		*dst = v
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		at, day, err := parseInstant(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: invalid %s %q", shared.ErrInvalidArgument, name, raw)
		}
		if day && name == "to" {
			at = at.AddDate(0, 0, 1)
		}
		*dst = &at
	}
	return filter, nil
}

func parseInstant(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	return t, true, err
}
