// Package http provides the chi-based HTTP API over the dashboard
// service: funnel metrics, breakdowns, enrollment reconciliation, NTR
// and the export surface.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "enrollapi/internal/errors"
	"enrollapi/internal/exporter"
	"enrollapi/internal/services"
	"enrollapi/pkg/contracts/domain"
)

// DashboardHandler serves the computed dashboard payload.
type DashboardHandler struct {
	service *services.DashboardService
	logger  *slog.Logger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/funnel", h.GetFunnel)
	r.Get("/funnel/yoy", h.GetYoY)
	r.Get("/breakdown", h.GetBreakdown)
	r.Get("/programs", h.GetPrograms)
	r.Get("/corporate", h.GetCorporate)
	r.Get("/enrollment", h.GetEnrollment)
	r.Get("/ntr", h.GetNTR)
	r.Get("/ntr/programs", h.GetNTRByProgram)
	r.Get("/rates", h.GetRates)
	r.Post("/refresh", h.Refresh)
	r.Get("/export/{format}", h.Export)

	return r
}

// snapshotResponse wraps a payload slice with the snapshot provenance so
// clients can tell cached responses apart.
type snapshotResponse struct {
	SnapshotID string      `json:"snapshot_id"`
	ComputedAt time.Time   `json:"computed_at"`
	Data       interface{} `json:"data"`
}

func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, pick func(*services.DashboardData) interface{}) {
	snapshot, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard pipeline failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.PipelineError(err))
		return
	}
	render.JSON(w, r, snapshotResponse{
		SnapshotID: snapshot.ID,
		ComputedAt: snapshot.ComputedAt,
		Data:       pick(snapshot.Value),
	})
}

// GetFunnel handles GET /funnel: per-year funnel metrics with stage
// conversion rates.
func (h *DashboardHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		type yearFunnel struct {
			Metrics domain.FunnelMetrics `json:"metrics"`
			Stages  []domain.FunnelStage `json:"stages"`
		}
		out := make(map[int]yearFunnel, len(d.FunnelByYear))
		for year, m := range d.FunnelByYear {
			out[year] = yearFunnel{Metrics: m, Stages: m.Stages()}
		}
		return map[string]interface{}{
			"years":  d.Years,
			"season": d.Season,
			"funnel": out,
		}
	})
}

// GetYoY handles GET /funnel/yoy.
func (h *DashboardHandler) GetYoY(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		type change struct {
			CurrentYear        int     `json:"current_year"`
			PreviousYear       int     `json:"previous_year"`
			ApplicationsChange float64 `json:"applications_change"`
			AdmitsChange       float64 `json:"admits_change"`
			EnrollmentsChange  float64 `json:"enrollments_change"`
		}
		changes := make([]change, 0, len(d.YoY))
		for _, y := range d.YoY {
			changes = append(changes, change{
				CurrentYear:        y.Current.Year,
				PreviousYear:       y.Previous.Year,
				ApplicationsChange: y.ApplicationsChange(),
				AdmitsChange:       y.AdmitsChange(),
				EnrollmentsChange:  y.EnrollmentsChange(),
			})
		}
		return changes
	})
}

// GetBreakdown handles GET /breakdown?by={category|school|degree}.
func (h *DashboardHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = "category"
	}
	if by != "category" && by != "school" && by != "degree" {
		render.Render(w, r, apierrors.InvalidParameter("by",
			"must be one of category, school, degree"))
		return
	}
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		switch by {
		case "school":
			return d.BySchool
		case "degree":
			return d.ByDegree
		default:
			return d.ByCategory
		}
	})
}

// GetPrograms handles GET /programs: top, trending and declining
// programs for the current cycle.
func (h *DashboardHandler) GetPrograms(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		return map[string]interface{}{
			"top":       d.TopPrograms,
			"trending":  d.TrendingPrograms,
			"declining": d.DecliningPrograms,
		}
	})
}

// GetCorporate handles GET /corporate.
func (h *DashboardHandler) GetCorporate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		return d.CorporateCohorts
	})
}

// GetEnrollment handles GET /enrollment: the pipeline/census
// reconciliation view.
func (h *DashboardHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		return map[string]interface{}{
			"breakdown":     d.Enrollment,
			"total":         d.Enrollment.Total(),
			"census_counts": d.CensusCounts,
		}
	})
}

// GetNTR handles GET /ntr.
func (h *DashboardHandler) GetNTR(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		return map[string]interface{}{
			"summary": d.NTR,
			"groups":  d.NTRByGroup,
		}
	})
}

// GetNTRByProgram handles GET /ntr/programs.
func (h *DashboardHandler) GetNTRByProgram(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(d *services.DashboardData) interface{} {
		return d.NTRByProgram
	})
}

// GetRates handles GET /rates: the active per-credit rate reference.
func (h *DashboardHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Rates())
}

// Refresh handles POST /refresh: recompute the snapshot now, bypassing
// the TTL.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Refresh(r.Context(), "manual")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "manual refresh failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.PipelineError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"snapshot_id": snapshot.ID,
		"computed_at": snapshot.ComputedAt,
	})
}

// Export handles GET /export/{format} with format csv or xlsx, streaming
// the full report as a download.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "csv" && format != "xlsx" {
		render.Render(w, r, apierrors.InvalidParameter("format", "must be csv or xlsx"))
		return
	}

	snapshot, err := h.service.Dashboard(r.Context())
	if err != nil {
		render.Render(w, r, apierrors.PipelineError(err))
		return
	}

	report := exporter.BuildReport(snapshot.Value)
	filename := fmt.Sprintf("enrollment-report-%s.%s", snapshot.Value.Semester, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = exporter.WriteXLSX(w, report)
	default:
		w.Header().Set("Content-Type", "text/csv")
		err = exporter.WriteCSV(w, report)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}
