/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suparena/entityregistry"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/storagemodels"
)

// Submitter runs an authenticated creation.
type Submitter interface {
	Submit(ctx context.Context, credential string) (entityregistry.Registration, error)
}

// Reader is the read side of the registry.
type Reader interface {
	Entity(ctx context.Context, id storagemodels.Hash) (storagemodels.Entity, error)
	OwnerOf(ctx context.Context, id storagemodels.Hash) (storagemodels.Identity, error)
	EntityOf(ctx context.Context, owner storagemodels.Identity) (storagemodels.Hash, error)
	EntityByIndex(ctx context.Context, pos uint64) (storagemodels.Hash, error)
	IndexOf(ctx context.Context, id storagemodels.Hash) (uint64, error)
	Count(ctx context.Context) (uint64, error)
}

// CreateResponse is returned by POST /v1/entities.
type CreateResponse struct {
	ID    storagemodels.Hash     `json:"id"`
	Owner storagemodels.Identity `json:"owner"`
	Index uint64                 `json:"index"`
}

// OwnerResponse pairs an entity with its owner.
type OwnerResponse struct {
	ID    storagemodels.Hash     `json:"id"`
	Owner storagemodels.Identity `json:"owner"`
}

// PositionResponse pairs an entity with its enumeration position.
type PositionResponse struct {
	ID    storagemodels.Hash `json:"id"`
	Index uint64             `json:"index"`
}

// CountResponse reports the enumeration count.
type CountResponse struct {
	Count uint64 `json:"count"`
}

// Handler wires registry endpoints to the runtime and the registry.
type Handler struct {
	runtime  Submitter
	reader   Reader
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// New constructs a handler. A nil gatherer disables /metrics.
func New(runtime Submitter, reader Reader, logger *slog.Logger, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		runtime:  runtime,
		reader:   reader,
		logger:   logger,
		gatherer: gatherer,
	}
}

// Router returns a chi router with middleware and every endpoint mounted.
func (h *Handler) Router(metricsPath string) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(AccessLog(h.logger))
	h.Register(r)
	if h.gatherer != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.Handle(metricsPath, promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Register mounts the API endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/entities", h.HandleCreate)
		r.Get("/entities/{id}", h.HandleGetEntity)
		r.Get("/entities/{id}/owner", h.HandleGetOwner)
		r.Get("/entities/{id}/index", h.HandleGetIndex)
		r.Get("/owners/{owner}/entity", h.HandleGetOwnedEntity)
		r.Get("/enumeration/count", h.HandleGetCount)
		r.Get("/enumeration/{position}", h.HandleGetByPosition)
		r.Get("/version", h.HandleVersion)
	})
}

// HandleCreate handles POST /v1/entities.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reg, err := h.runtime.Submit(r.Context(), bearerToken(r))
	if err != nil {
		h.logFailure(r, "create failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{ID: reg.ID, Owner: reg.Owner, Index: reg.Index})
}

// HandleGetEntity handles GET /v1/entities/{id}.
func (h *Handler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	e, err := h.reader.Entity(r.Context(), id)
	if err != nil {
		h.logFailure(r, "entity lookup failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleGetOwner handles GET /v1/entities/{id}/owner.
func (h *Handler) HandleGetOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	owner, err := h.reader.OwnerOf(r.Context(), id)
	if err != nil {
		h.logFailure(r, "owner lookup failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerResponse{ID: id, Owner: owner})
}

// HandleGetIndex handles GET /v1/entities/{id}/index.
func (h *Handler) HandleGetIndex(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	pos, err := h.reader.IndexOf(r.Context(), id)
	if err != nil {
		h.logFailure(r, "index lookup failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PositionResponse{ID: id, Index: pos})
}

// HandleGetOwnedEntity handles GET /v1/owners/{owner}/entity.
func (h *Handler) HandleGetOwnedEntity(w http.ResponseWriter, r *http.Request) {
	// chi matches on the escaped path, so identities containing '/' arrive as %2F.
	raw, err := url.PathUnescape(chi.URLParam(r, "owner"))
	if err != nil {
		writeError(w, errors.NewValidationError("owner", err.Error()))
		return
	}
	owner := storagemodels.Identity(raw)
	id, err := h.reader.EntityOf(r.Context(), owner)
	if err != nil {
		h.logFailure(r, "owned entity lookup failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerResponse{ID: id, Owner: owner})
}

// HandleGetCount handles GET /v1/enumeration/count.
func (h *Handler) HandleGetCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.reader.Count(r.Context())
	if err != nil {
		h.logFailure(r, "count failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

// HandleGetByPosition handles GET /v1/enumeration/{position}.
func (h *Handler) HandleGetByPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.ParseUint(chi.URLParam(r, "position"), 10, 64)
	if err != nil {
		writeError(w, errors.NewValidationError("position", "must be an unsigned integer"))
		return
	}
	id, err := h.reader.EntityByIndex(r.Context(), pos)
	if err != nil {
		h.logFailure(r, "enumeration lookup failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PositionResponse{ID: id, Index: pos})
}

// HandleVersion handles GET /v1/version.
func (h *Handler) HandleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, entityregistry.GetVersionInfo())
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (storagemodels.Hash, bool) {
	id, err := storagemodels.ParseHash(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.NewValidationError("id", err.Error()))
		return storagemodels.Hash{}, false
	}
	return id, true
}

func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	ctx := r.Context()
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", GetRequestID(ctx), "error", err)
		return
	}
	h.logger.DebugContext(ctx, msg, "request_id", GetRequestID(ctx), "status", status, "error", err)
}
