package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/ports"
	refmodels "casebridge/internal/refdata/models"
	dErrors "casebridge/pkg/domain-errors"
	"casebridge/pkg/platform/sentinel"
)

// Common value list codes used by the engine.
const (
	ListApplicationTypes       = "XXCCMS_APP_AMEND_TYPES"
	ListProceedingStatus       = "XXCCMS_PROCEEDING_STATUS"
	ListMatterTypes            = "XXCCMS_MATTER_TYPES"
	ListLevelOfService         = "XXCCMS_LEVEL_OF_SERVICE"
	ListClientInvolvementTypes = "XXCCMS_CLIENT_INV_TYPE"
	ListScopeLimitations       = "XXCCMS_SCOPE_LIMITATIONS"
)

// Policy decides what a lookup miss turns into.
type Policy int

const (
	// Optional misses resolve to the identity fallback of the raw code.
	Optional Policy = iota
	// Required misses resolve to Missing and the caller fails the build.
	Required
)

type resolutionState int

const (
	stateResolved resolutionState = iota
	stateFallback
	stateMissing
)

// Resolution is the outcome of resolving one coded value: a LookupValue
// (real or identity fallback) or Missing for a required value with no data.
type Resolution struct {
	value refmodels.LookupValue
	state resolutionState
}

// Resolved wraps a value found in reference data.
func Resolved(v refmodels.LookupValue) Resolution {
	return Resolution{value: v, state: stateResolved}
}

// Fallback wraps the identity fallback for code.
func Fallback(code string) Resolution {
	return Resolution{value: refmodels.Identity(code), state: stateFallback}
}

// Missing marks a required value the backend could not provide.
func Missing() Resolution {
	return Resolution{state: stateMissing}
}

// Value returns the resolved value; ok is false only for Missing.
func (r Resolution) Value() (refmodels.LookupValue, bool) {
	return r.value, r.state != stateMissing
}

func (r Resolution) IsFallback() bool {
	return r.state == stateFallback
}

func (r Resolution) IsMissing() bool {
	return r.state == stateMissing
}

// RequiredDataError is returned when a required reference-data resolution
// cannot be satisfied. It unwraps to a dErrors error coded CodeReferenceData.
type RequiredDataError struct {
	Field string
	Code  string
	err   error
}

func (e *RequiredDataError) Error() string {
	return e.err.Error()
}

func (e *RequiredDataError) Unwrap() error {
	return e.err
}

func requiredDataError(field, code, msg string) error {
	return &RequiredDataError{
		Field: field,
		Code:  code,
		err:   dErrors.New(dErrors.CodeReferenceData, msg),
	}
}

// lookupError classifies a backend failure that is not a plain miss.
func lookupError(err error, field string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, fmt.Sprintf("lookup of %s aborted", field))
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("reference data unavailable for %s", field))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to query reference data for %s", field))
	}
}

// LookupResolver wraps the reference-data port with the fallback policy shared
// by every enricher.
type LookupResolver struct {
	refdata ports.ReferenceDataPort
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLookupResolver(refdata ports.ReferenceDataPort, logger *slog.Logger, m *metrics.Metrics) *LookupResolver {
	return &LookupResolver{refdata: refdata, logger: logger, metrics: m}
}

// CommonValue resolves code within listCode.
//
// A backend that answers nothing (nil page or ErrNotFound) yields the identity
// fallback when optional and Missing when required. A backend that answers
// with an empty page ("no data") yields the identity fallback under both
// policies.
func (r *LookupResolver) CommonValue(ctx context.Context, field, listCode, code string, policy Policy) (Resolution, error) {
	start := time.Now()
	page, err := r.refdata.CommonValues(ctx, listCode, code)
	r.metrics.ObserveLookupLatency("common_value", time.Since(start))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return Resolution{}, lookupError(err, field)
	}
	if err != nil {
		page = nil
	}

	if v, ok := page.First(); ok {
		return Resolved(v), nil
	}
	if page == nil && policy == Required {
		return Missing(), nil
	}
	r.fallback(ctx, field, listCode, code)
	return Fallback(code), nil
}

// OptionalCommonValue resolves an optional common value straight to its
// LookupValue.
func (r *LookupResolver) OptionalCommonValue(ctx context.Context, field, listCode, code string) (refmodels.LookupValue, error) {
	res, err := r.CommonValue(ctx, field, listCode, code, Optional)
	if err != nil {
		return refmodels.LookupValue{}, err
	}
	v, _ := res.Value()
	return v, nil
}

// Court resolves a court code. Only a unique match counts; zero or several
// matches fall back to the raw code.
func (r *LookupResolver) Court(ctx context.Context, code string) (refmodels.LookupValue, error) {
	start := time.Now()
	courts, err := r.refdata.Courts(ctx, code)
	r.metrics.ObserveLookupLatency("court", time.Since(start))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return refmodels.LookupValue{}, lookupError(err, "court")
	}
	if len(courts) == 1 {
		return courts[0], nil
	}
	r.fallback(ctx, "court", "", code)
	return refmodels.Identity(code), nil
}

// OutcomeResult returns the first outcome result for the proceeding type, or nil.
func (r *LookupResolver) OutcomeResult(ctx context.Context, proceedingCode, resultCode string) (*refmodels.LookupValue, error) {
	start := time.Now()
	values, err := r.refdata.OutcomeResults(ctx, proceedingCode, resultCode)
	r.metrics.ObserveLookupLatency("outcome_result", time.Since(start))
	return firstOrNil(values, err, "outcome result")
}

// StageEnd returns the first stage end for the proceeding type, or nil.
func (r *LookupResolver) StageEnd(ctx context.Context, proceedingCode, stageEndCode string) (*refmodels.LookupValue, error) {
	start := time.Now()
	values, err := r.refdata.StageEnds(ctx, proceedingCode, stageEndCode)
	r.metrics.ObserveLookupLatency("stage_end", time.Since(start))
	return firstOrNil(values, err, "stage end")
}

func firstOrNil(values []refmodels.LookupValue, err error, field string) (*refmodels.LookupValue, error) {
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, lookupError(err, field)
	}
	if len(values) == 0 {
		return nil, nil
	}
	v := values[0]
	return &v, nil
}

func (r *LookupResolver) fallback(ctx context.Context, field, listCode, code string) {
	r.metrics.IncrementFallback(field)
	if r.logger != nil {
		r.logger.DebugContext(ctx, "reference data miss, using identity fallback",
			"field", field,
			"list_code", listCode,
			"code", code,
		)
	}
}
