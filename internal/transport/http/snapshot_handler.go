package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "promopulse/internal/errors"
	"promopulse/internal/middleware"
	"promopulse/internal/services"
)

// SnapshotHandler exposes snapshot lifecycle endpoints.
type SnapshotHandler struct {
	snapshots *services.SnapshotService
	datasets  *services.DatasetService

	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSnapshotHandler creates the handler.
func NewSnapshotHandler(snapshots *services.SnapshotService, datasets *services.DatasetService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SnapshotHandler {
	return &SnapshotHandler{
		snapshots:    snapshots,
		datasets:     datasets,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "snapshot_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the snapshot routes.
func (h *SnapshotHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)

	r.Route("/{snapshotID}", func(r chi.Router) {
		r.Use(h.SnapshotCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/replay", h.Replay)
		r.Post("/export", h.Export)
	})

	return r
}

// SnapshotCtx validates the snapshotID parameter.
func (h *SnapshotHandler) SnapshotCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(chi.URLParam(r, "snapshotID")) == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("snapshotID", "Snapshot ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Create handles POST /api/datasets/{datasetID}/snapshots: builds a
// frozen snapshot of the dataset under one filter configuration.
func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	store, ok := h.datasets.Get(chi.URLParam(r, "datasetID"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}

	var req services.SnapshotRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		return
	}

	snap, err := h.snapshots.Create(r.Context(), store, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "snapshot build failed",
			slog.String("dataset_id", store.ID),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snap,
	})
}

// List handles GET /api/snapshots.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries := h.snapshots.List()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summaries,
		"count":  len(summaries),
	})
}

// Get handles GET /api/snapshots/{snapshotID}: returns the full frozen
// bundle including raw and filtered records.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Get(chi.URLParam(r, "snapshotID"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotNotFound)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snap,
	})
}

// Delete handles DELETE /api/snapshots/{snapshotID}.
func (h *SnapshotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshotID")
	if !h.snapshots.Delete(r.Context(), id) {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotNotFound)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"id":     id,
	})
}

// Replay handles POST /api/snapshots/{snapshotID}/replay: re-runs the
// filter engine against the embedded records and reports divergence.
func (h *SnapshotHandler) Replay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshotID")
	if _, ok := h.snapshots.Get(id); !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotNotFound)
		return
	}
	if err := h.snapshots.Replay(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ReplayFailed(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"id":       id,
		"verified": true,
	})
}

// Export handles POST /api/snapshots/{snapshotID}/export: writes the
// snapshot JSON and its CSV companions to the export directory.
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshotID")
	if _, ok := h.snapshots.Get(id); !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotNotFound)
		return
	}
	paths, err := h.snapshots.Export(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "snapshot export failed",
			slog.String("snapshot_id", id),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrInternalServer)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"id":     id,
		"files":  paths,
	})
}
