package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "capitalforge/internal/errors"
	"capitalforge/internal/exporter"
	"capitalforge/internal/infrastructure"
	"capitalforge/internal/services"
	"capitalforge/pkg/contracts/domain"
)

var validate = validator.New()

// SnapshotHandler serves the snapshot upload and query endpoints.
type SnapshotHandler struct {
	service        *services.PortfolioService
	csv            *exporter.CSVExporter
	report         *exporter.ReportRenderer
	metrics        *infrastructure.Metrics
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewSnapshotHandler creates a snapshot handler.
func NewSnapshotHandler(
	service *services.PortfolioService,
	csv *exporter.CSVExporter,
	report *exporter.ReportRenderer,
	metrics *infrastructure.Metrics,
	errorHandler *apierrors.ErrorHandler,
	logger *slog.Logger,
	maxUploadBytes int64,
) *SnapshotHandler {
	return &SnapshotHandler{
		service:        service,
		csv:            csv,
		report:         report,
		metrics:        metrics,
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("component", "snapshot_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the snapshot routes, mounted under /api/snapshots.
func (h *SnapshotHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSnapshot)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/metrics", h.GetMetrics)
		r.Get("/projects", h.GetProjects)
		r.Get("/projects/{name}", h.GetProjectDetail)
		r.Get("/trends", h.GetTrends)
		r.Get("/variance", h.GetVariance)
		r.Get("/allocation", h.GetAllocation)
		r.Get("/facets", h.GetFacets)
		r.Get("/resolution", h.GetResolution)
		r.Get("/export/csv", h.ExportCSV)
		r.Get("/report", h.GetReport)
	})

	return r
}

// filterQuery binds the filter query parameters.
type filterQuery struct {
	Portfolio      string `validate:"omitempty,max=256"`
	SubPortfolio   string `validate:"omitempty,max=256"`
	Manager        string `validate:"omitempty,max=256"`
	Classification string `validate:"omitempty,max=256"`
}

func parseFilter(r *http.Request) (services.Filter, error) {
	q := r.URL.Query()
	fq := filterQuery{
		Portfolio:      q.Get("portfolio"),
		SubPortfolio:   q.Get("sub_portfolio"),
		Manager:        q.Get("manager"),
		Classification: q.Get("classification"),
	}
	if err := validate.Struct(fq); err != nil {
		return services.Filter{}, err
	}
	return services.Filter{
		Portfolio:      fq.Portfolio,
		SubPortfolio:   fq.SubPortfolio,
		Manager:        fq.Manager,
		Classification: fq.Classification,
	}, nil
}

// snapshotResponse is the POST /api/snapshots payload.
type snapshotResponse struct {
	ID         string                   `json:"id"`
	FileName   string                   `json:"file_name"`
	CreatedAt  time.Time                `json:"created_at"`
	Rows       int                      `json:"rows"`
	Columns    int                      `json:"columns"`
	Cached     bool                     `json:"cached"`
	Resolution *domain.ResolutionReport `json:"resolution"`
}

// CreateSnapshot handles POST /api/snapshots: a multipart upload under
// the "file" field. Identical bytes return the cached snapshot with
// status 200 instead of 201.
func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.metrics.ObserveUpload("rejected", 0)
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.metrics.ObserveUpload("rejected", 0)
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	snap, cached, err := h.service.CreateSnapshot(ctx, header.Filename, data)
	if err != nil {
		h.metrics.ObserveUpload("rejected", 0)
		if errors.Is(err, services.ErrEmptyUpload) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "uploaded file is empty"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if cached {
		h.metrics.ObserveUpload("cached", snap.Table.RowCount())
		render.Status(r, http.StatusOK)
	} else {
		h.metrics.ObserveUpload("accepted", snap.Table.RowCount())
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, snapshotResponse{
		ID:         snap.ID,
		FileName:   snap.FileName,
		CreatedAt:  snap.CreatedAt,
		Rows:       snap.Table.RowCount(),
		Columns:    snap.Table.ColumnCount(),
		Cached:     cached,
		Resolution: snap.Report,
	})
}

// GetMetrics handles GET /api/snapshots/{id}/metrics.
func (h *SnapshotHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	m, err := h.service.Metrics(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// GetProjects handles GET /api/snapshots/{id}/projects.
func (h *SnapshotHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	projects, err := h.service.Projects(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProjectDetail handles GET /api/snapshots/{id}/projects/{name}.
func (h *SnapshotHandler) GetProjectDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, detail)
}

// GetTrends handles GET /api/snapshots/{id}/trends.
func (h *SnapshotHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	points, err := h.service.Trends(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"months": points})
}

// GetVariance handles GET /api/snapshots/{id}/variance.
func (h *SnapshotHandler) GetVariance(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	report, err := h.service.Variance(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetAllocation handles GET /api/snapshots/{id}/allocation. The "by"
// query parameter selects the grouping dimension, defaulting to
// portfolio.
func (h *SnapshotHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	slices, err := h.service.Allocation(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("by"), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"slices": slices})
}

// GetFacets handles GET /api/snapshots/{id}/facets.
func (h *SnapshotHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, facets)
}

// GetResolution handles GET /api/snapshots/{id}/resolution.
func (h *SnapshotHandler) GetResolution(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Resolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// ExportCSV handles GET /api/snapshots/{id}/export/csv, streaming the
// filtered clean table as a BOM-prefixed CSV download.
func (h *SnapshotHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	id := chi.URLParam(r, "id")
	table, err := h.service.CleanTable(r.Context(), id, f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(id, "csv")))
	if err := h.csv.Write(w, table, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		h.logger.ErrorContext(r.Context(), "CSV export failed",
			slog.String("snapshot_id", id),
			slog.String("error", err.Error()))
	}
}

// GetReport handles GET /api/snapshots/{id}/report: the self-contained
// HTML report over the unfiltered snapshot.
func (h *SnapshotHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	snap, err := h.service.Snapshot(ctx, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	metrics, err := h.service.Metrics(ctx, id, services.Filter{})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	projects, err := h.service.Projects(ctx, id, services.Filter{})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	trends, err := h.service.Trends(ctx, id, services.Filter{})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = h.report.Render(w, exporter.ReportData{
		FileName:    snap.FileName,
		SnapshotID:  snap.ID,
		GeneratedAt: time.Now().UTC(),
		Metrics:     metrics,
		Projects:    projects,
		Trends:      trends,
		Resolution:  snap.Report,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "report rendering failed",
			slog.String("snapshot_id", id),
			slog.String("error", err.Error()))
	}
}

// handleServiceError maps service sentinels onto API errors before
// falling back to the central handler.
func (h *SnapshotHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSnapshotNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrSnapshotNotFound)
	case errors.Is(err, services.ErrProjectNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("project"))
	case errors.Is(err, services.ErrUnknownDimension):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("by", err.Error()))
	case errors.Is(err, services.ErrNoProjectNameField):
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusUnprocessableEntity, "NO_PROJECT_NAME", err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func exportFileName(id, ext string) string {
	short := id
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("capitalforge_%s.%s", short, ext)
}
