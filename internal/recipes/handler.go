package recipes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// Handler serves the recipe and recipe-ingredient endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers recipe routes. Paths are flat so that /recipes/{id}/prepare can be owned by
// the production handler on the same router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/recipes", h.list)
	r.Post("/recipes", h.create)
	r.Get("/recipes/{id}", h.get)
	r.Put("/recipes/{id}", h.update)
	r.Patch("/recipes/{id}", h.update)
	r.Delete("/recipes/{id}", h.delete)
	r.Put("/recipes/{id}/ingredients", h.setIngredients)

	r.Get("/recipe-ingredients", h.listRequirements)
	r.Post("/recipe-ingredients", h.createRequirement)
	r.Get("/recipe-ingredients/{id}", h.getRequirement)
	r.Put("/recipe-ingredients/{id}", h.updateRequirement)
	r.Patch("/recipe-ingredients/{id}", h.updateRequirement)
	r.Delete("/recipe-ingredients/{id}", h.deleteRequirement)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.RespondError(w, r, h.logger, err)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]RecipeResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, NewRecipeResponse(rec))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewRecipeResponse(rec))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := httpx.Validate(req); err != nil {
		h.fail(w, r, err)
		return
	}
	lines, err := toRequirementInputs(req.Ingredients)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.Create(r.Context(), RecipeInput{
		Name:            req.Name,
		Instructions:    req.Instructions,
		PreparationTime: req.PreparationTime,
		Image:           req.Image,
	}, lines)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewRecipeResponse(rec))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := httpx.Validate(req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewRecipeResponse(rec))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setIngredients(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req setIngredientsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := httpx.Validate(req); err != nil {
		h.fail(w, r, err)
		return
	}
	lines, err := toRequirementInputs(req.Ingredients)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.SetIngredients(r.Context(), id, lines)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewRecipeResponse(rec))
}

func (h *Handler) listRequirements(w http.ResponseWriter, r *http.Request) {
	var filter RequirementFilter
	if raw := r.URL.Query().Get("recipe"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.fail(w, r, fmt.Errorf("%w: invalid recipe filter %q", shared.ErrInvalidArgument, raw))
			return
		}
		filter.RecipeID = id
	}
	items, err := h.service.ListRequirements(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]RequirementResponse, 0, len(items))
	for _, req := range items {
		out = append(out, NewRequirementResponse(req))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getRequirement(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.service.GetRequirement(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewRequirementResponse(req))
}

func (h *Handler) createRequirement(w http.ResponseWriter, r *http.Request) {
	var body requirementCreateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := httpx.Validate(body); err != nil {
		h.fail(w, r, err)
		return
	}
	lines, err := toRequirementInputs([]requirementLine{{Ingredient: body.Ingredient, Quantity: body.Quantity}})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.service.AddRequirement(r.Context(), body.Recipe, lines[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewRequirementResponse(req))
}

func (h *Handler) updateRequirement(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body requirementUpdateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	if !body.Quantity.Set {
		h.fail(w, r, fmt.Errorf("%w: quantity is required", shared.ErrInvalidArgument))
		return
	}
	qty, err := body.Quantity.Float("quantity")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.service.UpdateRequirement(r.Context(), id, qty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewRequirementResponse(req))
}

func (h *Handler) deleteRequirement(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.DeleteRequirement(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
