package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Randallflagg19/travel/internal/httpx"
	"github.com/Randallflagg19/travel/internal/logging"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// List handles GET /v1/assets
// @Summary Browse the catalog feed
// @Description Keyset-paginated feed, newest first by default
// @Tags assets
// @Produce json
// @Param limit query int false "Page size (1-200)" default(50)
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param country query string false "Country (requires city)"
// @Param city query string false "City (requires country)"
// @Param unknown query bool false "Only assets without country or city"
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/assets [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := ParseLimit(query.Get("limit"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	filter, err := ParseFilter(query.Get("country"), query.Get("city"), query.Get("unknown"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	order, err := ParseOrder(query.Get("order"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	page, err := h.svc.Feed(r.Context(), FeedQuery{
		Limit:  limit,
		Cursor: query.Get("cursor"),
		Filter: filter,
		Order:  order,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) || errors.Is(err, ErrInvalidFilter) || errors.Is(err, ErrInvalidOrder) {
			h.badRequest(w, r, err)
			return
		}
		h.internalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, page, nil)
}

// Get handles GET /v1/assets/{id}
// @Summary Get one asset
// @Tags assets
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/assets/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Create handles POST /v1/assets
// @Summary Create an asset by hand
// @Tags assets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/assets [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	in.UserID = httpx.UserIDFrom(r)

	if details := httpx.ValidateStruct(in); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	a, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, a)
}

// Delete handles DELETE /v1/assets/{id}
// @Summary Delete an asset and its DAM resource
// @Tags assets
// @Security BearerAuth
// @Param id path string true "Asset ID"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/assets/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// Places handles GET /v1/places
// @Summary Countries and cities with asset counts
// @Tags assets
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/places [get]
func (h *HTTPHandler) Places(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Places(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Asset not found", nil)
	case errors.Is(err, ErrDuplicateExternalID):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrOwnerRequired):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	case errors.Is(err, ErrUnknownOwner):
		httpx.JSONError(w, r, http.StatusConflict, "UNKNOWN_OWNER", err.Error(), nil)
	case errors.Is(err, ErrNoMediaURL):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		h.internalError(w, r, err)
	}
}

func (h *HTTPHandler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected feed request")
	httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("catalog request failed")
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
