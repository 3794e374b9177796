// Package mapping builds the resolved, display-ready mapping context of a case
// from its raw coded values and the reference-data lookup services.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/models"
	"casebridge/internal/mapping/ports"
	refmodels "casebridge/internal/refdata/models"
	dErrors "casebridge/pkg/domain-errors"
	"casebridge/pkg/platform/audit"
	"casebridge/pkg/platform/sentinel"
	"casebridge/pkg/requestcontext"
)

const (
	defaultMaxConcurrency = 8
	tracerName            = "casebridge/internal/mapping"
)

// Service builds mapping contexts. It holds no per-build state and is safe for
// concurrent use.
type Service struct {
	refdata        ports.ReferenceDataPort
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPort
	tracer         trace.Tracer
	maxConcurrency int

	resolver       *LookupResolver
	proceedings    *ProceedingEnricher
	priorAuthority *PriorAuthorityEnricher
	caseOutcome    *CaseOutcomeEnricher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher ports.AuditPort) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithMaxConcurrency bounds how many proceedings or prior authorities are
// enriched at once. Values below 1 keep the default.
func WithMaxConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// New constructs a Service over the given reference-data port.
func New(refdata ports.ReferenceDataPort, opts ...Option) (*Service, error) {
	if refdata == nil {
		return nil, fmt.Errorf("reference data port is required")
	}
	s := &Service{
		refdata:        refdata,
		maxConcurrency: defaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	s.resolver = NewLookupResolver(refdata, s.logger, s.metrics)
	calculator := NewCostLimitationCalculator(refdata, s.metrics)
	s.proceedings = NewProceedingEnricher(refdata, s.resolver, calculator, s.metrics, s.tracer)
	s.priorAuthority = NewPriorAuthorityEnricher(refdata, s.resolver, s.metrics, s.tracer)
	s.caseOutcome = NewCaseOutcomeEnricher(refdata, s.metrics, s.tracer)
	return s, nil
}

// BuildMappingContext resolves every coded value of the case against reference
// data. A required-data failure returns an error coded
// dErrors.CodeReferenceData and no partial context.
func (s *Service) BuildMappingContext(ctx context.Context, c *models.CaseRecord) (*models.MappingContext, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "case record is required")
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "mapping.Build",
		trace.WithAttributes(attribute.String("case.reference", c.CaseReference)))
	defer span.End()

	mc, err := s.build(ctx, c)
	s.metrics.ObserveBuildLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.IncrementOutcome(string(dErrors.CodeOf(err)))
		s.logFailure(ctx, c, err)
		s.emitAudit(ctx, audit.Event{
			Action:   string(audit.EventMappingContextFailed),
			Subject:  c.CaseReference,
			Decision: "failed",
			Reason:   err.Error(),
			Duration: time.Since(start),
		})
		return nil, err
	}

	s.metrics.IncrementOutcome("built")
	s.emitAudit(ctx, audit.Event{
		Action:   string(audit.EventMappingContextBuilt),
		Subject:  c.CaseReference,
		Decision: "built",
		Duration: time.Since(start),
	})
	return mc, nil
}

func (s *Service) build(ctx context.Context, c *models.CaseRecord) (*models.MappingContext, error) {
	app := c.ApplicationDetails
	if app == nil {
		app = &models.ApplicationDetails{}
	}

	onlyDrafts := caseWithOnlyDraftProceedings(c.Proceedings)

	var (
		provider        *refmodels.ProviderDetail
		certificateType *refmodels.LookupValue
		applicationType *refmodels.LookupValue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		provider, err = s.provider(gctx, app.Provider.ProviderFirmID)
		return err
	})
	g.Go(func() error {
		var err error
		certificateType, applicationType, err = s.applicationTypes(gctx, app)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	office, ok := provider.FindOffice(app.Provider.ProviderOfficeID)
	if !ok {
		id := strconv.Itoa(app.Provider.ProviderOfficeID)
		return nil, requiredDataError("provider office", id,
			fmt.Sprintf("failed to find office with id %s", id))
	}
	feeEarner, supervisor := contacts(office, app.Provider)

	amendments, main := partitionProceedings(c.Proceedings, onlyDrafts)
	enriched, err := s.enrichProceedings(ctx, append(append([]*models.ProceedingRecord{}, amendments...), main...), app)
	if err != nil {
		return nil, err
	}
	amendmentContexts := enriched[:len(amendments):len(amendments)]
	mainContexts := enriched[len(amendments):]

	priorAuthorities, err := s.enrichPriorAuthorities(ctx, c.PriorAuthorities)
	if err != nil {
		return nil, err
	}

	caseOutcome, err := s.caseOutcome.Enrich(ctx, c.Awards, enriched)
	if err != nil {
		return nil, err
	}

	return &models.MappingContext{
		Case:                         c,
		ProviderDetail:               provider,
		ProviderOffice:               office,
		FeeEarnerContact:             feeEarner,
		SupervisorContact:            supervisor,
		CertificateType:              certificateType,
		ApplicationType:              applicationType,
		DevolvedPowers:               devolvedPowers(app),
		CurrentProviderBilledAmount:  billedAmountDelta(app.CategoryOfLaw),
		MeansAssessment:              mostRecentAssessment(app.MeansAssessments),
		MeritsAssessment:             mostRecentAssessment(app.MeritsAssessments),
		CaseWithOnlyDraftProceedings: onlyDrafts,
		AmendmentProceedingsInEbs:    amendmentContexts,
		Proceedings:                  mainContexts,
		PriorAuthorities:             priorAuthorities,
		CaseOutcome:                  caseOutcome,
	}, nil
}

func (s *Service) provider(ctx context.Context, firmID int) (*refmodels.ProviderDetail, error) {
	start := time.Now()
	provider, err := s.refdata.Provider(ctx, firmID)
	s.metrics.ObserveLookupLatency("provider", time.Since(start))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, lookupError(err, "provider")
	}
	if provider == nil {
		return nil, requiredDataError("provider", strconv.Itoa(firmID), "failed to query provider")
	}
	return provider, nil
}

// applicationTypes resolves the certificate type and the application type. The
// application type falls back to the certificate type when its own code is
// absent or unknown.
func (s *Service) applicationTypes(ctx context.Context, app *models.ApplicationDetails) (certificate, application *refmodels.LookupValue, err error) {
	if app.CertificateType != "" {
		v, err := s.resolver.OptionalCommonValue(ctx, "certificate type", ListApplicationTypes, app.CertificateType)
		if err != nil {
			return nil, nil, err
		}
		certificate = &v
	}

	if app.ApplicationAmendmentType == "" {
		return certificate, certificate, nil
	}
	res, err := s.resolver.CommonValue(ctx, "application type", ListApplicationTypes, app.ApplicationAmendmentType, Optional)
	if err != nil {
		return nil, nil, err
	}
	if res.IsFallback() && certificate != nil {
		return certificate, certificate, nil
	}
	v, _ := res.Value()
	return certificate, &v, nil
}

// enrichProceedings enriches proceedings with bounded concurrency, keeping
// input order.
func (s *Service) enrichProceedings(ctx context.Context, proceedings []*models.ProceedingRecord, app *models.ApplicationDetails) ([]*models.ProceedingMappingContext, error) {
	out := make([]*models.ProceedingMappingContext, len(proceedings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, p := range proceedings {
		g.Go(func() error {
			pc, err := s.proceedings.Enrich(gctx, p, app)
			if err != nil {
				return err
			}
			out[i] = pc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) enrichPriorAuthorities(ctx context.Context, records []*models.PriorAuthorityRecord) ([]*models.PriorAuthorityMappingContext, error) {
	priorAuthorities := make([]*models.PriorAuthorityRecord, 0, len(records))
	for _, pa := range records {
		if pa != nil {
			priorAuthorities = append(priorAuthorities, pa)
		}
	}

	out := make([]*models.PriorAuthorityMappingContext, len(priorAuthorities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, pa := range priorAuthorities {
		g.Go(func() error {
			pac, err := s.priorAuthority.Enrich(gctx, pa)
			if err != nil {
				return err
			}
			out[i] = pac
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"case_reference", event.Subject,
			"error", err,
		)
	}
}

func (s *Service) logFailure(ctx context.Context, c *models.CaseRecord, err error) {
	if s.logger == nil {
		return
	}
	attrs := []any{
		"case_reference", c.CaseReference,
		"request_id", requestcontext.RequestID(ctx),
		"code", dErrors.CodeOf(err),
		"error", err,
	}
	var rde *RequiredDataError
	if errors.As(err, &rde) {
		attrs = append(attrs, "field", rde.Field, "missing_code", rde.Code)
	}
	s.logger.WarnContext(ctx, "mapping context build failed", attrs...)
}

// caseWithOnlyDraftProceedings is true for a non-empty list in which every
// proceeding is a draft.
func caseWithOnlyDraftProceedings(proceedings []*models.ProceedingRecord) bool {
	if len(proceedings) == 0 {
		return false
	}
	for _, p := range proceedings {
		if !p.IsDraft() {
			return false
		}
	}
	return true
}

// partitionProceedings splits drafts into amendments unless every proceeding
// is a draft, in which case all of them are main proceedings. Nil entries are
// dropped.
func partitionProceedings(proceedings []*models.ProceedingRecord, onlyDrafts bool) (amendments, main []*models.ProceedingRecord) {
	amendments = []*models.ProceedingRecord{}
	main = []*models.ProceedingRecord{}
	for _, p := range proceedings {
		switch {
		case p == nil:
		case !onlyDrafts && p.IsDraft():
			amendments = append(amendments, p)
		default:
			main = append(main, p)
		}
	}
	return amendments, main
}

// contacts finds the fee earner and supervisor among the office fee earners.
// Absent or unknown ids yield nil.
func contacts(office *refmodels.Office, provider models.ProviderIdentity) (feeEarner, supervisor *refmodels.ContactDetail) {
	byID := make(map[string]*refmodels.ContactDetail, len(office.FeeEarners))
	for i := range office.FeeEarners {
		byID[strconv.Itoa(office.FeeEarners[i].ID)] = &office.FeeEarners[i]
	}
	if provider.FeeEarnerContactID != "" {
		feeEarner = byID[provider.FeeEarnerContactID]
	}
	if provider.SupervisorContactID != "" {
		supervisor = byID[provider.SupervisorContactID]
	}
	return feeEarner, supervisor
}

func devolvedPowers(app *models.ApplicationDetails) models.DevolvedPowers {
	switch app.ApplicationAmendmentType {
	case models.AppTypeSubstantiveDevolvedPowers, models.AppTypeEmergencyDevolvedPowers:
		return models.DevolvedPowers{Used: true, Date: app.DevolvedPowersDate}
	}
	return models.DevolvedPowers{}
}

// billedAmountDelta is the total paid to date less what the cost limitation
// entries have already been paid.
func billedAmountDelta(col *models.CategoryOfLaw) decimal.Decimal {
	if col == nil || col.TotalPaidToDate == nil || len(col.CostLimitations) == 0 {
		return decimal.Zero
	}
	paid := decimal.Zero
	for _, cl := range col.CostLimitations {
		if cl.PaidToDate != nil {
			paid = paid.Add(*cl.PaidToDate)
		}
	}
	return col.TotalPaidToDate.Sub(paid)
}

// mostRecentAssessment picks the latest dated assessment. Undated entries sort
// first; ties keep the earlier entry.
func mostRecentAssessment(history []*models.AssessmentResult) *models.AssessmentResult {
	var latest *models.AssessmentResult
	for _, a := range history {
		if a == nil {
			continue
		}
		if latest == nil || laterThan(a.Date, latest.Date) {
			latest = a
		}
	}
	return latest
}

func laterThan(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
