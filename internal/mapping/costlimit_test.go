package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/mocks"
	"casebridge/internal/mapping/models"
	refmodels "casebridge/internal/refdata/models"
	dErrors "casebridge/pkg/domain-errors"
)

func detail(standard, emergency string) []refmodels.ScopeLimitationDetail {
	return []refmodels.ScopeLimitationDetail{{
		CostLimitation:          dec(standard),
		EmergencyCostLimitation: dec(emergency),
	}}
}

func TestScopeLimitationCriteria_ZeroWhenInputsAbsent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.ProceedingRecord, app *models.ApplicationDetails)
	}{
		{"no category of law", func(_ *models.ProceedingRecord, app *models.ApplicationDetails) { app.CategoryOfLaw = nil }},
		{"blank category of law", func(_ *models.ProceedingRecord, app *models.ApplicationDetails) { app.CategoryOfLaw.Code = "" }},
		{"no matter type", func(p *models.ProceedingRecord, _ *models.ApplicationDetails) { p.MatterType = "" }},
		{"no proceeding type", func(p *models.ProceedingRecord, _ *models.ApplicationDetails) { p.ProceedingType = "" }},
		{"no level of service", func(p *models.ProceedingRecord, _ *models.ApplicationDetails) { p.LevelOfService = "" }},
		{"no scope limitations", func(p *models.ProceedingRecord, _ *models.ApplicationDetails) { p.ScopeLimitations = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProceeding("p1", "GRANTED")
			app := testApplication()
			tt.mutate(p, app)

			_, _, ok := scopeLimitationCriteria(p, app)
			assert.False(t, ok)

			// no lookup may be issued
			ctrl := gomock.NewController(t)
			calc := NewCostLimitationCalculator(mocks.NewMockReferenceDataPort(ctrl), nil)
			got, err := calc.Calculate(context.Background(), p, app)
			require.NoError(t, err)
			assert.True(t, got.IsZero())
		})
	}
}

func TestScopeLimitationCriteria_EmergencyFlag(t *testing.T) {
	p := testProceeding("p1", "GRANTED")

	t.Run("substantive leaves the flag out of the key", func(t *testing.T) {
		criteria, emergency, ok := scopeLimitationCriteria(p, testApplication())
		require.True(t, ok)
		assert.False(t, emergency)
		require.Len(t, criteria, 1)
		assert.Nil(t, criteria[0].Emergency)
		assert.Equal(t, refmodels.ScopeLimitationCriteria{
			CategoryOfLaw:   "MAT",
			MatterType:      "KSEC8",
			ProceedingCode:  "PR0001",
			LevelOfService:  "3",
			ScopeLimitation: "FM059",
		}, criteria[0])
	})

	for _, appType := range []string{models.AppTypeEmergency, models.AppTypeEmergencyDevolvedPowers} {
		t.Run(appType+" includes the flag", func(t *testing.T) {
			app := testApplication()
			app.ApplicationAmendmentType = appType
			criteria, emergency, ok := scopeLimitationCriteria(p, app)
			require.True(t, ok)
			assert.True(t, emergency)
			require.NotNil(t, criteria[0].Emergency)
			assert.True(t, *criteria[0].Emergency)
		})
	}
}

func TestMaxContribution(t *testing.T) {
	assert.True(t, maxContribution(nil).IsZero())
	assert.True(t, dec("2500").Equal(maxContribution([]decimal.Decimal{dec("1000"), dec("2500"), dec("0")})))
}

func TestCostLimitationCalculator_Calculate(t *testing.T) {
	ctx := context.Background()

	threeScopes := func() *models.ProceedingRecord {
		p := testProceeding("p1", "GRANTED")
		p.ScopeLimitations = []*models.ScopeLimitation{{Code: "SL1"}, {Code: "SL2"}, {Code: "SL3"}}
		return p
	}

	t.Run("maximum of contributions, queried in list order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		refdata := mocks.NewMockReferenceDataPort(ctrl)
		gomock.InOrder(
			refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Cond(func(c refmodels.ScopeLimitationCriteria) bool {
				return c.ScopeLimitation == "SL1"
			})).Return(detail("1500", "900"), nil),
			refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Cond(func(c refmodels.ScopeLimitationCriteria) bool {
				return c.ScopeLimitation == "SL2"
			})).Return(detail("25000", "1350"), nil),
			refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Cond(func(c refmodels.ScopeLimitationCriteria) bool {
				return c.ScopeLimitation == "SL3"
			})).Return(nil, nil),
		)

		calc := NewCostLimitationCalculator(refdata, metrics.New(prometheus.NewRegistry()))
		got, err := calc.Calculate(ctx, threeScopes(), testApplication())
		require.NoError(t, err)
		assert.True(t, dec("25000").Equal(got), "got %s", got)
	})

	t.Run("emergency applications use the emergency limitation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		refdata := mocks.NewMockReferenceDataPort(ctrl)
		refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Any()).Return(detail("1500", "900"), nil)
		refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Any()).Return(detail("25000", "1350"), nil)
		refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Any()).Return(nil, nil)

		app := testApplication()
		app.ApplicationAmendmentType = models.AppTypeEmergency

		got, err := NewCostLimitationCalculator(refdata, nil).Calculate(ctx, threeScopes(), app)
		require.NoError(t, err)
		assert.True(t, dec("1350").Equal(got), "got %s", got)
	})

	t.Run("adding a positive contribution never lowers the result", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		refdata := mocks.NewMockReferenceDataPort(ctrl)
		refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c refmodels.ScopeLimitationCriteria) ([]refmodels.ScopeLimitationDetail, error) {
				switch c.ScopeLimitation {
				case "SL1":
					return detail("1500", "0"), nil
				case "SL2":
					return detail("700", "0"), nil
				}
				return nil, nil
			}).AnyTimes()
		calc := NewCostLimitationCalculator(refdata, nil)

		p := testProceeding("p1", "GRANTED")
		p.ScopeLimitations = []*models.ScopeLimitation{{Code: "SL1"}}
		before, err := calc.Calculate(ctx, p, testApplication())
		require.NoError(t, err)

		p.ScopeLimitations = append(p.ScopeLimitations, &models.ScopeLimitation{Code: "SL2"})
		after, err := calc.Calculate(ctx, p, testApplication())
		require.NoError(t, err)

		assert.True(t, after.GreaterThanOrEqual(before))
		assert.True(t, dec("1500").Equal(after))
	})

	t.Run("backend failure aborts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		refdata := mocks.NewMockReferenceDataPort(ctrl)
		refdata.EXPECT().ScopeLimitationDetails(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := NewCostLimitationCalculator(refdata, nil).Calculate(ctx, threeScopes(), testApplication())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
