package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Randallflagg19/travel/internal/catalog"
	"github.com/Randallflagg19/travel/internal/httpx"
	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/user"
)

// OwnerLookup finds the user imported assets are attributed to.
type OwnerLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type HTTPHandler struct {
	svc        *Service
	owners     OwnerLookup
	runTimeout time.Duration
}

// NewHTTPHandler creates the admin import handler. runTimeout extends the
// server write deadline for an import response; zero keeps the server's.
func NewHTTPHandler(svc *Service, owners OwnerLookup, runTimeout time.Duration) *HTTPHandler {
	return &HTTPHandler{svc: svc, owners: owners, runTimeout: runTimeout}
}

type importBody struct {
	Prefix string `json:"prefix" validate:"max=1024"`
	Max    int    `json:"max"`
	Repair bool   `json:"repair"`
}

type probeBody struct {
	Prefix string `json:"prefix" validate:"max=1024"`
}

// decodeOptional accepts an empty body as the zero value.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, dst); err != nil && !errors.Is(err, io.EOF) {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
			return false
		}
	}
	if details := httpx.ValidateStruct(dst); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return false
	}
	return true
}

// Import handles POST /v1/admin/import
// @Summary Mirror DAM assets into the catalog
// @Description Walks the folder tree under prefix and inserts every resource not yet in the catalog
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/admin/import [post]
func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	var in importBody
	if !decodeOptional(w, r, &in) {
		return
	}

	ownerID, ok := h.resolveOwner(w, r)
	if !ok {
		return
	}

	if h.runTimeout > 0 {
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Now().Add(h.runTimeout)); err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("cannot extend write deadline for import")
		}
	}

	summary, err := h.svc.Run(r.Context(), Request{
		Prefix:  in.Prefix,
		Max:     in.Max,
		Repair:  in.Repair,
		OwnerID: ownerID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, summary, nil)
}

// Probe handles POST /v1/admin/import/probe
// @Summary Sample the DAM folder without importing
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/admin/import/probe [post]
func (h *HTTPHandler) Probe(w http.ResponseWriter, r *http.Request) {
	var in probeBody
	if !decodeOptional(w, r, &in) {
		return
	}

	res, err := h.svc.Probe(r.Context(), in.Prefix)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// resolveOwner checks that the token subject is a catalog user. Without the
// row every insert of the run would fail its foreign key.
func (h *HTTPHandler) resolveOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := httpx.UserIDFrom(r)
	if id == "" {
		h.writeError(w, r, catalog.ErrOwnerRequired)
		return "", false
	}
	if h.owners == nil {
		return id, true
	}
	u, err := h.owners.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logging.Ctx(r.Context()).Warn().Str("subject", id).Msg("import requested by unknown user")
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNKNOWN_OWNER", "Token subject is not a known user", nil)
			return "", false
		}
		h.writeError(w, r, err)
		return "", false
	}
	return u.ID, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPrefixRequired):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected import request")
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, catalog.ErrOwnerRequired):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	case errors.Is(err, ErrNotConfigured):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "DAM_NOT_CONFIGURED", err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "IMPORT_ABORTED", "Import was interrupted; re-run to continue", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("import failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
