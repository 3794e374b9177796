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

// PriorAuthorityEnricher resolves a prior authority's type definition and the
// display values of its attributes.
type PriorAuthorityEnricher struct {
	refdata  ports.ReferenceDataPort
	resolver *LookupResolver
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func NewPriorAuthorityEnricher(refdata ports.ReferenceDataPort, resolver *LookupResolver, m *metrics.Metrics, tracer trace.Tracer) *PriorAuthorityEnricher {
	return &PriorAuthorityEnricher{refdata: refdata, resolver: resolver, metrics: m, tracer: tracer}
}

// Enrich builds the mapping context of one prior authority. Attribute items
// keep the input order.
func (e *PriorAuthorityEnricher) Enrich(ctx context.Context, pa *models.PriorAuthorityRecord) (*models.PriorAuthorityMappingContext, error) {
	ctx, span := e.tracer.Start(ctx, "mapping.EnrichPriorAuthority",
		trace.WithAttributes(attribute.String("prior_authority.type", pa.Type)))
	defer span.End()

	paType, err := e.priorAuthorityType(ctx, pa.Type)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	definitions := make(map[string]*refmodels.PriorAuthorityDetail, len(paType.Details))
	for i := range paType.Details {
		definitions[paType.Details[i].Code] = &paType.Details[i]
	}

	items := make([]models.PriorAuthorityItemMappingContext, len(pa.Attributes))
	g, gctx := errgroup.WithContext(ctx)
	for i, attr := range pa.Attributes {
		def := definitions[attr.Name]
		items[i] = models.PriorAuthorityItemMappingContext{
			Attribute:  attr,
			Definition: def,
			Value:      refmodels.Identity(attr.Value),
		}
		if def == nil || !def.IsListOfValues() {
			continue
		}
		g.Go(func() error {
			v, err := e.listOfValues(gctx, def.LovCode, attr.Value)
			if err != nil {
				return err
			}
			items[i].Value = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &models.PriorAuthorityMappingContext{
		PriorAuthority:     pa,
		PriorAuthorityType: paType,
		Items:              items,
	}, nil
}

func (e *PriorAuthorityEnricher) priorAuthorityType(ctx context.Context, code string) (*refmodels.PriorAuthorityTypeDetail, error) {
	start := time.Now()
	detail, err := e.refdata.PriorAuthorityType(ctx, code)
	e.metrics.ObserveLookupLatency("prior_authority_type", time.Since(start))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, lookupError(err, "prior authority type")
	}
	if detail == nil {
		return nil, requiredDataError("prior authority type", code,
			fmt.Sprintf("failed to find prior authority type with code %s", code))
	}
	return detail, nil
}

// listOfValues resolves a list-of-values attribute. A backend that answers
// nothing fails the build; an explicit empty answer keeps the raw value.
func (e *PriorAuthorityEnricher) listOfValues(ctx context.Context, listCode, value string) (refmodels.LookupValue, error) {
	res, err := e.resolver.CommonValue(ctx, "prior authority attribute", listCode, value, Required)
	if err != nil {
		return refmodels.LookupValue{}, err
	}
	v, ok := res.Value()
	if !ok {
		return refmodels.LookupValue{}, requiredDataError("prior authority attribute", value,
			fmt.Sprintf("failed to find common value with code %s", value))
	}
	return v, nil
}
