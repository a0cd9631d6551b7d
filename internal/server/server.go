// Package server exposes the estimator over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/blueprint-estimator/internal/app"
	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blueprint"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/estimate"
	"github.com/joseph-ayodele/blueprint-estimator/internal/export"
	"github.com/joseph-ayodele/blueprint-estimator/internal/permit"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/pricebook"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/project"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/template"
	"github.com/joseph-ayodele/blueprint-estimator/internal/timeline"
)

// HeaderUserID carries the acting user's id.
const HeaderUserID = "X-User-ID"

// BlueprintProcessor runs one extraction synchronously.
type BlueprintProcessor interface {
	ProcessBlueprint(ctx context.Context, req blueprint.Request) (*entity.Blueprint, error)
}

// Deps are the services the HTTP surface dispatches to. Queue may be nil, in
// which case async extraction requests are refused.
type Deps struct {
	Projects  *project.Service
	Templates *template.Service
	PriceBook *pricebook.Service
	Processor BlueprintProcessor
	Engine    *estimate.Engine
	Estimates *estimate.Service
	Permits   *permit.Service
	Timeline  *timeline.Predictor
	Export    *export.Service
	Queue     async.Queue
	Ready     func(ctx context.Context) error

	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type handler struct {
	Deps
	log *slog.Logger
}

// NewRouter builds the chi router for every /api/v1 route plus /health and /ready.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &handler{Deps: d, log: d.Logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.requestContext)
	r.Use(h.requestLogger)
	r.Use(chimiddleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(d.RequestTimeout))
	}

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/projects", h.createProject)
		r.Route("/projects/{projectId}", func(r chi.Router) {
			r.Get("/", h.getProject)

			r.Route("/blueprints", func(r chi.Router) {
				r.Post("/", h.processBlueprint)
				r.Get("/", h.listBlueprints)
				r.Get("/{blueprintId}", h.getBlueprint)
				r.Get("/{blueprintId}/permit", h.derivePermit)
			})

			r.Route("/estimates", func(r chi.Router) {
				r.Post("/", h.generateEstimate)
				r.Post("/manual", h.createEstimate)
				r.Get("/", h.listEstimates)
				r.Route("/{estimateId}", func(r chi.Router) {
					r.Get("/", h.getEstimate)
					r.Patch("/", h.updateEstimate)
					r.Put("/status", h.updateEstimateStatus)
					r.Post("/revisions", h.reviseEstimate)
					r.Get("/export", h.exportEstimate)
					r.Post("/timeline", h.predictTimeline)
				})
			})
		})

		r.Route("/companies/{companyId}", func(r chi.Router) {
			r.Put("/settings", h.putCompanySettings)
			r.Get("/settings", h.getCompanySettings)
			r.Post("/history", h.recordHistory)
		})

		r.Post("/templates", h.saveTemplate)
		r.Get("/templates/{templateId}", h.getTemplate)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/assemblies", h.listAssemblies)
			r.Put("/assemblies/{code}", h.upsertAssembly)
			r.Get("/materials", h.listMaterials)
			r.Put("/materials/{materialId}", h.upsertMaterial)
		})
	})

	return r
}

// requestContext copies the request id and acting user into the context the
// services log with.
func (h *handler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := chimiddleware.GetReqID(ctx); id != "" {
			ctx = common.WithRequestID(ctx, id)
		}
		if user := strings.TrimSpace(r.Header.Get(HeaderUserID)); user != "" {
			ctx = common.WithUserID(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.log.Log(r.Context(), level, "http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", common.RequestIDFromContext(r.Context()),
		)
	})
}

func userID(r *http.Request) string {
	return common.UserIDFromContext(r.Context())
}

// DepsFromApp maps the wired application onto the HTTP dependencies.
func DepsFromApp(a *app.App, requestTimeout time.Duration) Deps {
	d := Deps{
		Projects:       a.Projects,
		Templates:      a.Templates,
		PriceBook:      a.PriceBook,
		Processor:      a.Processor,
		Engine:         a.Engine,
		Estimates:      a.Estimates,
		Permits:        a.Permits,
		Timeline:       a.Timeline,
		Export:         a.Export,
		Ready:          a.Ready,
		Logger:         a.Logger,
		RequestTimeout: requestTimeout,
	}
	// a nil *ProcessorQueue must stay a nil interface
	if a.Queue != nil {
		d.Queue = a.Queue
	}
	return d
}
