package mapping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/models"
	"casebridge/internal/mapping/ports"
	refmodels "casebridge/internal/refdata/models"
	"casebridge/pkg/platform/sentinel"
)

// CaseOutcomeEnricher sorts the case awards into their category buckets.
type CaseOutcomeEnricher struct {
	refdata ports.ReferenceDataPort
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewCaseOutcomeEnricher(refdata ports.ReferenceDataPort, m *metrics.Metrics, tracer trace.Tracer) *CaseOutcomeEnricher {
	return &CaseOutcomeEnricher{refdata: refdata, metrics: m, tracer: tracer}
}

// Enrich categorises awards and attaches the already enriched proceedings.
// A nil awards slice leaves every bucket nil.
func (e *CaseOutcomeEnricher) Enrich(ctx context.Context, awards []*models.AwardRecord, proceedings []*models.ProceedingMappingContext) (*models.CaseOutcomeMappingContext, error) {
	ctx, span := e.tracer.Start(ctx, "mapping.EnrichCaseOutcome",
		trace.WithAttributes(attribute.Int("awards.count", len(awards))))
	defer span.End()

	categories, err := e.awardCategories(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := &models.CaseOutcomeMappingContext{ProceedingOutcomes: proceedings}
	if awards == nil {
		return out, nil
	}

	out.CostAwards = []*models.AwardRecord{}
	out.FinancialAwards = []*models.AwardRecord{}
	out.LandAwards = []*models.AwardRecord{}
	out.OtherAssetAwards = []*models.AwardRecord{}

	for _, award := range awards {
		if award == nil {
			continue
		}
		category, ok := categories[award.AwardType]
		if !ok {
			err := requiredDataError("award type", award.AwardType,
				fmt.Sprintf("failed to find award type with code %s", award.AwardType))
			span.RecordError(err)
			return nil, err
		}
		switch category {
		case refmodels.AwardCategoryCost:
			out.CostAwards = append(out.CostAwards, award)
		case refmodels.AwardCategoryFinancial:
			out.FinancialAwards = append(out.FinancialAwards, award)
		case refmodels.AwardCategoryLand:
			out.LandAwards = append(out.LandAwards, award)
		case refmodels.AwardCategoryOtherAsset:
			out.OtherAssetAwards = append(out.OtherAssetAwards, award)
		default:
			err := requiredDataError("award type", award.AwardType,
				fmt.Sprintf("award type %s has unknown category %s", award.AwardType, category))
			span.RecordError(err)
			return nil, err
		}
	}
	return out, nil
}

// awardCategories loads the award type table as a code to category map. An
// empty table is treated like a missing one.
func (e *CaseOutcomeEnricher) awardCategories(ctx context.Context) (map[string]refmodels.AwardCategory, error) {
	start := time.Now()
	types, err := e.refdata.AwardTypes(ctx)
	e.metrics.ObserveLookupLatency("award_types", time.Since(start))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, lookupError(err, "award types")
	}
	if len(types) == 0 {
		return nil, requiredDataError("award types", "", "failed to retrieve award types")
	}

	categories := make(map[string]refmodels.AwardCategory, len(types))
	for _, t := range types {
		categories[t.Code] = t.Category
	}
	return categories, nil
}
