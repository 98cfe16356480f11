package production

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// Handler serves the production endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/recipes/{id}/prepare", h.prepare)
	r.Get("/production-records", h.list)
	r.Post("/production-records", h.create)
	r.Get("/production-records/summary", h.summary)
	r.Get("/production-records/{id}", h.get)
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	var req prepareRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, r, h.logger, err)
			return
		}
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.produce(w, r, http.StatusOK, id, req.Quantity, req.Notes, func(rec Record) any {
		return prepareResponse{
			Message:    fmt.Sprintf("Successfully prepared %s of %s", formatQty(rec.Quantity), rec.RecipeName),
			Production: NewRecordResponse(rec),
		}
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.produce(w, r, http.StatusCreated, req.Recipe, req.Quantity, req.Notes, func(rec Record) any {
		return NewRecordResponse(rec)
	})
}

func (h *Handler) produce(w http.ResponseWriter, r *http.Request, status int, recipeID int64, rawQty httpx.Number, notes string, render func(Record) any) {
	qty, err := quantityOrDefault(rawQty)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	key, err := shared.ParseIdempotencyKey(r.Header.Get(shared.IdempotencyHeader))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	rec, err := h.service.Produce(r.Context(), ProduceInput{
		RecipeID:       recipeID,
		Quantity:       qty,
		Notes:          notes,
		IdempotencyKey: key,
	})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, status, render(rec))
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
	out := make([]RecordResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, NewRecordResponse(rec))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewRecordResponse(rec))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSummaryResponse(s))
}

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
	if raw := q.Get("recipe"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Filter{}, fmt.Errorf("%w: invalid recipe filter %q", shared.ErrInvalidArgument, raw)
		}
		filter.RecipeID = id
	}
	return filter, nil
}
