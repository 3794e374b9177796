package mapping

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/models"
	"casebridge/internal/mapping/ports"
	refmodels "casebridge/internal/refdata/models"
	"casebridge/pkg/platform/sentinel"
)

// isEmergency reports whether the application or amendment type is one of the
// emergency variants.
func isEmergency(app *models.ApplicationDetails) bool {
	if app == nil {
		return false
	}
	switch app.ApplicationAmendmentType {
	case models.AppTypeEmergency, models.AppTypeEmergencyDevolvedPowers:
		return true
	}
	return false
}

// scopeLimitationCriteria builds one detail query per scope limitation, in
// list order. ok is false when any input the cost limitation depends on is
// absent, in which case the cost limitation is zero.
func scopeLimitationCriteria(proceeding *models.ProceedingRecord, app *models.ApplicationDetails) (criteria []refmodels.ScopeLimitationCriteria, emergency bool, ok bool) {
	if proceeding == nil || app == nil || app.CategoryOfLaw == nil {
		return nil, false, false
	}
	if app.CategoryOfLaw.Code == "" ||
		proceeding.MatterType == "" ||
		proceeding.ProceedingType == "" ||
		proceeding.LevelOfService == "" ||
		len(proceeding.ScopeLimitations) == 0 {
		return nil, false, false
	}

	emergency = isEmergency(app)
	var emergencyFlag *bool
	if emergency {
		emergencyFlag = &emergency
	}

	criteria = make([]refmodels.ScopeLimitationCriteria, 0, len(proceeding.ScopeLimitations))
	for _, sl := range proceeding.ScopeLimitations {
		code := ""
		if sl != nil {
			code = sl.Code
		}
		criteria = append(criteria, refmodels.ScopeLimitationCriteria{
			CategoryOfLaw:   app.CategoryOfLaw.Code,
			MatterType:      proceeding.MatterType,
			ProceedingCode:  proceeding.ProceedingType,
			LevelOfService:  proceeding.LevelOfService,
			ScopeLimitation: code,
			Emergency:       emergencyFlag,
		})
	}
	return criteria, emergency, true
}

// contribution is the cost limitation one scope limitation allows: the first
// matching detail row's emergency or standard limit, zero without a match.
func contribution(details []refmodels.ScopeLimitationDetail, emergency bool) decimal.Decimal {
	if len(details) == 0 {
		return decimal.Zero
	}
	if emergency {
		return details[0].EmergencyCostLimitation
	}
	return details[0].CostLimitation
}

// maxContribution returns the largest contribution, zero for none. The
// proceeding is bounded by its most generous scope, so contributions are not
// summed.
func maxContribution(contributions []decimal.Decimal) decimal.Decimal {
	result := decimal.Zero
	for _, c := range contributions {
		if c.GreaterThan(result) {
			result = c
		}
	}
	return result
}

// CostLimitationCalculator computes a proceeding's cost limitation from the
// scope-limitation detail table.
type CostLimitationCalculator struct {
	refdata ports.ReferenceDataPort
	metrics *metrics.Metrics
}

func NewCostLimitationCalculator(refdata ports.ReferenceDataPort, m *metrics.Metrics) *CostLimitationCalculator {
	return &CostLimitationCalculator{refdata: refdata, metrics: m}
}

// Calculate returns the maximum cost limitation across the proceeding's scope
// limitations. Detail queries run in scope-limitation order.
func (c *CostLimitationCalculator) Calculate(ctx context.Context, proceeding *models.ProceedingRecord, app *models.ApplicationDetails) (decimal.Decimal, error) {
	criteria, emergency, ok := scopeLimitationCriteria(proceeding, app)
	if !ok {
		return decimal.Zero, nil
	}

	contributions := make([]decimal.Decimal, 0, len(criteria))
	for _, crit := range criteria {
		start := time.Now()
		details, err := c.refdata.ScopeLimitationDetails(ctx, crit)
		c.metrics.ObserveLookupLatency("scope_limitation_detail", time.Since(start))
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return decimal.Zero, lookupError(err, "scope limitation detail")
		}
		contributions = append(contributions, contribution(details, emergency))
	}
	return maxContribution(contributions), nil
}
