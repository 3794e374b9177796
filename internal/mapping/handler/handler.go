// Package handler exposes mapping context builds over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"casebridge/internal/casesource"
	"casebridge/internal/mapping/models"
	dErrors "casebridge/pkg/domain-errors"
	"casebridge/pkg/platform/httputil"
	"casebridge/pkg/requestcontext"
)

// maxBodyBytes bounds an uploaded case document.
const maxBodyBytes = 4 << 20

// Service builds mapping contexts.
type Service interface {
	BuildMappingContext(ctx context.Context, c *models.CaseRecord) (*models.MappingContext, error)
}

// Handler wires the mapping endpoints to the mapping service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the mapping endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/mapping-contexts", h.HandleBuild)
	r.Get("/healthz", h.HandleHealth)
}

// HandleBuild handles POST /mapping-contexts?format=ebs|soa. The body is the
// case document in the named upstream format.
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	format, err := casesource.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := casesource.Decode(format, http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	mc, err := h.service.BuildMappingContext(ctx, record)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeReferenceData) {
			h.logger.ErrorContext(ctx, "mapping context build failed",
				"request_id", requestID,
				"case_reference", record.CaseReference,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mapping context built",
		"request_id", requestID,
		"case_reference", record.CaseReference,
		"proceedings", len(mc.Proceedings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, mc)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
