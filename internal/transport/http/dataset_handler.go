package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"promopulse/internal/dataset"
	apierrors "promopulse/internal/errors"
	"promopulse/internal/middleware"
	"promopulse/internal/services"
)

// DatasetHandler exposes dataset ingestion and query endpoints.
type DatasetHandler struct {
	datasets  *services.DatasetService
	analytics *services.AnalyticsService

	maxUploadBytes int64
	validate       *validator.Validate
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDatasetHandler creates the handler.
func NewDatasetHandler(datasets *services.DatasetService, analytics *services.AnalyticsService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		datasets:       datasets,
		analytics:      analytics,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/", h.List)

	r.Route("/{datasetID}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/query", h.Query)
	})

	return r
}

// DatasetCtx validates the datasetID parameter.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(chi.URLParam(r, "datasetID")) == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("datasetID", "Dataset ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets: a multipart form with a single
// "file" field holding a CSV or XLSX dataset.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WarnContext(r.Context(), "multipart parse failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		if strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Multipart field 'file' is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(header.Filename)
	if !strings.HasSuffix(ext, ".csv") && !strings.HasSuffix(ext, ".xlsx") {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedUpload)
		return
	}

	store, err := h.datasets.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset ingest failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.IngestFailed(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   datasetSummary(store),
	})
}

// List handles GET /api/datasets.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	stores := h.datasets.List()
	summaries := make([]map[string]interface{}, 0, len(stores))
	for _, store := range stores {
		summaries = append(summaries, datasetSummary(store))
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summaries,
		"count":  len(summaries),
	})
}

// Get handles GET /api/datasets/{datasetID}.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.datasets.Get(chi.URLParam(r, "datasetID"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   datasetSummary(store),
	})
}

// Delete handles DELETE /api/datasets/{datasetID}.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	if !h.datasets.Delete(r.Context(), id) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"id":     id,
	})
}

// Query handles POST /api/datasets/{datasetID}/query: runs the full
// analytics pipeline for one filter configuration.
func (h *DatasetHandler) Query(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	store, ok := h.datasets.Get(chi.URLParam(r, "datasetID"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}

	var req services.QueryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		return
	}

	result, err := h.analytics.Query(r.Context(), store, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "query failed",
			slog.String("dataset_id", store.ID),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func datasetSummary(store *dataset.Store) map[string]interface{} {
	return map[string]interface{}{
		"id":         store.ID,
		"name":       store.Name,
		"kind":       store.Schema.Kind,
		"schema":     store.Schema,
		"rows":       store.Len(),
		"created_at": store.CreatedAt,
	}
}
