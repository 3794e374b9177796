package mapping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/models"
	"casebridge/internal/mapping/ports"
	refmodels "casebridge/internal/refdata/models"
	"casebridge/pkg/platform/sentinel"
)

// ProceedingEnricher resolves the reference data of a single proceeding.
type ProceedingEnricher struct {
	refdata    ports.ReferenceDataPort
	resolver   *LookupResolver
	calculator *CostLimitationCalculator
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func NewProceedingEnricher(refdata ports.ReferenceDataPort, resolver *LookupResolver, calculator *CostLimitationCalculator, m *metrics.Metrics, tracer trace.Tracer) *ProceedingEnricher {
	return &ProceedingEnricher{
		refdata:    refdata,
		resolver:   resolver,
		calculator: calculator,
		metrics:    m,
		tracer:     tracer,
	}
}

type proceedingLookups struct {
	proceedingType    *refmodels.ProceedingTypeDetail
	status            refmodels.LookupValue
	matterType        refmodels.LookupValue
	levelOfService    refmodels.LookupValue
	clientInvolvement refmodels.LookupValue
}

type outcomeLookups struct {
	court         *refmodels.LookupValue
	outcomeResult *refmodels.LookupValue
	stageEnd      *refmodels.LookupValue
}

// Enrich builds the mapping context of one proceeding. app is the parent
// case's application, read for the cost limitation; it may be nil.
func (e *ProceedingEnricher) Enrich(ctx context.Context, proceeding *models.ProceedingRecord, app *models.ApplicationDetails) (*models.ProceedingMappingContext, error) {
	ctx, span := e.tracer.Start(ctx, "mapping.EnrichProceeding",
		trace.WithAttributes(
			attribute.String("proceeding.id", proceeding.ProceedingID),
			attribute.String("proceeding.type", proceeding.ProceedingType),
		))
	defer span.End()

	lookups, err := e.resolveLookups(ctx, proceeding)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	costLimitation, err := e.calculator.Calculate(ctx, proceeding, app)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	scopeLimitations, err := e.scopeLimitations(ctx, proceeding.ScopeLimitations)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var outcome outcomeLookups
	if proceeding.Outcome != nil {
		outcome, err = e.resolveOutcome(ctx, proceeding.ProceedingType, proceeding.Outcome)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	return &models.ProceedingMappingContext{
		Proceeding:               proceeding,
		ProceedingType:           lookups.proceedingType,
		Status:                   lookups.status,
		MatterType:               lookups.matterType,
		LevelOfService:           lookups.levelOfService,
		ClientInvolvement:        lookups.clientInvolvement,
		ProceedingCostLimitation: costLimitation,
		ScopeLimitations:         scopeLimitations,
		Court:                    outcome.court,
		OutcomeResult:            outcome.outcomeResult,
		StageEnd:                 outcome.stageEnd,
	}, nil
}

// resolveLookups issues the five proceeding lookups together and joins them.
// A missing proceeding type cancels the others.
func (e *ProceedingEnricher) resolveLookups(ctx context.Context, proceeding *models.ProceedingRecord) (proceedingLookups, error) {
	var out proceedingLookups
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail, err := e.proceedingType(gctx, proceeding.ProceedingType)
		if err != nil {
			return err
		}
		out.proceedingType = detail
		return nil
	})

	optional := []struct {
		field    string
		listCode string
		code     string
		dst      *refmodels.LookupValue
	}{
		{"proceeding status", ListProceedingStatus, proceeding.Status, &out.status},
		{"matter type", ListMatterTypes, proceeding.MatterType, &out.matterType},
		{"level of service", ListLevelOfService, proceeding.LevelOfService, &out.levelOfService},
		{"client involvement", ListClientInvolvementTypes, proceeding.ClientInvolvement, &out.clientInvolvement},
	}
	for _, l := range optional {
		g.Go(func() error {
			v, err := e.resolver.OptionalCommonValue(gctx, l.field, l.listCode, l.code)
			if err != nil {
				return err
			}
			*l.dst = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return proceedingLookups{}, err
	}
	return out, nil
}

func (e *ProceedingEnricher) proceedingType(ctx context.Context, code string) (*refmodels.ProceedingTypeDetail, error) {
	start := time.Now()
	detail, err := e.refdata.ProceedingType(ctx, code)
	e.metrics.ObserveLookupLatency("proceeding_type", time.Since(start))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, lookupError(err, "proceeding type")
	}
	if detail == nil {
		return nil, requiredDataError("proceeding type", code,
			fmt.Sprintf("failed to retrieve proceeding type with code %s", code))
	}
	return detail, nil
}

// scopeLimitations pairs each scope limitation with its display value, in
// input order.
func (e *ProceedingEnricher) scopeLimitations(ctx context.Context, limitations []*models.ScopeLimitation) ([]models.ScopeLimitationMappingContext, error) {
	out := make([]models.ScopeLimitationMappingContext, 0, len(limitations))
	for _, sl := range limitations {
		if sl == nil {
			continue
		}
		display, err := e.resolver.OptionalCommonValue(ctx, "scope limitation", ListScopeLimitations, sl.Code)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ScopeLimitationMappingContext{ScopeLimitation: sl, Display: display})
	}
	return out, nil
}

// resolveOutcome resolves court, outcome result and stage end together.
func (e *ProceedingEnricher) resolveOutcome(ctx context.Context, proceedingCode string, outcome *models.OutcomeRecord) (outcomeLookups, error) {
	var out outcomeLookups
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		court, err := e.resolver.Court(gctx, outcome.CourtCode)
		if err != nil {
			return err
		}
		out.court = &court
		return nil
	})
	g.Go(func() error {
		v, err := e.resolver.OutcomeResult(gctx, proceedingCode, outcome.ResultCode)
		out.outcomeResult = v
		return err
	})
	g.Go(func() error {
		v, err := e.resolver.StageEnd(gctx, proceedingCode, outcome.StageEndCode)
		out.stageEnd = v
		return err
	})

	if err := g.Wait(); err != nil {
		return outcomeLookups{}, err
	}
	return out, nil
}
