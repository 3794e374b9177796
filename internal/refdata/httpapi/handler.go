package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"casebridge/internal/mapping/ports"
	dErrors "casebridge/pkg/domain-errors"
	"casebridge/pkg/platform/httputil"
	"casebridge/pkg/platform/middleware/requestscope"
	"casebridge/pkg/platform/sentinel"
	"casebridge/pkg/requestcontext"
)

// Handler serves a reference-data port over the routes Client calls.
type Handler struct {
	refdata ports.ReferenceDataPort
	logger  *slog.Logger
}

func NewHandler(refdata ports.ReferenceDataPort, logger *slog.Logger) *Handler {
	return &Handler{refdata: refdata, logger: logger}
}

// Router returns a chi router with the request-scope and recoverer middleware
// and every route registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestscope.Middleware)
	r.Use(chimiddleware.Recoverer)
	h.Register(r)
	return r
}

// Register mounts the reference-data routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/common-values", h.handleCommonValues)
	r.Get("/providers/{id}", h.handleProvider)
	r.Get("/proceedings/{code}", h.handleProceedingType)
	r.Get("/scope-limitations", h.handleScopeLimitations)
	r.Get("/award-types", h.handleAwardTypes)
	r.Get("/prior-authority-types/{code}", h.handlePriorAuthorityType)
	r.Get("/courts", h.handleCourts)
	r.Get("/outcome-results", h.handleOutcomeResults)
	r.Get("/stage-ends", h.handleStageEnds)
}

func (h *Handler) handleCommonValues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("type") == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "type is required"))
		return
	}
	page, err := h.refdata.CommonValues(r.Context(), q.Get("type"), q.Get("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "provider id must be numeric"))
		return
	}
	provider, err := h.refdata.Provider(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, provider)
}

func (h *Handler) handleProceedingType(w http.ResponseWriter, r *http.Request) {
	pt, err := h.refdata.ProceedingType(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pt)
}

func (h *Handler) handleScopeLimitations(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}
	rows, err := h.refdata.ScopeLimitationDetails(r.Context(), criteria)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, rows)
}

func (h *Handler) handleAwardTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.refdata.AwardTypes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, types)
}

func (h *Handler) handlePriorAuthorityType(w http.ResponseWriter, r *http.Request) {
	pa, err := h.refdata.PriorAuthorityType(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pa)
}

func (h *Handler) handleCourts(w http.ResponseWriter, r *http.Request) {
	courts, err := h.refdata.Courts(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, courts)
}

func (h *Handler) handleOutcomeResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	values, err := h.refdata.OutcomeResults(r.Context(), q.Get("proceeding_code"), q.Get("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, values)
}

func (h *Handler) handleStageEnds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	values, err := h.refdata.StageEnds(r.Context(), q.Get("proceeding_code"), q.Get("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, values)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "not found"))
		return
	case errors.Is(err, sentinel.ErrUnavailable):
		err = dErrors.Wrap(err, dErrors.CodeUnavailable, "reference data unavailable")
	}
	if h.logger != nil {
		h.logger.ErrorContext(r.Context(), "reference data lookup failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

// writeList keeps an empty result encoded as [] rather than null.
func writeList[T any](w http.ResponseWriter, in []T) {
	if in == nil {
		in = []T{}
	}
	httputil.WriteJSON(w, http.StatusOK, listPage[T]{Content: in})
}
