package mapping

//go:generate mockgen -source=ports/refdata.go -destination=mocks/refdata_mocks.go -package=mocks ReferenceDataPort
//go:generate mockgen -source=ports/audit.go -destination=mocks/audit_mocks.go -package=mocks AuditPort

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"casebridge/internal/mapping/metrics"
	"casebridge/internal/mapping/mocks"
	refmodels "casebridge/internal/refdata/models"
	dErrors "casebridge/pkg/domain-errors"
	"casebridge/pkg/platform/sentinel"
)

// =============================================================================
// Lookup Resolver Test Suite
// =============================================================================
// Justification: the resolver owns the fallback policy every enricher relies
// on. Tests pin the difference between "nothing answered" and "no data", and
// how backend failures are classified.

type LookupResolverSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	refdata  *mocks.MockReferenceDataPort
	metrics  *metrics.Metrics
	resolver *LookupResolver
}

func TestLookupResolverSuite(t *testing.T) {
	suite.Run(t, new(LookupResolverSuite))
}

func (s *LookupResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.refdata = mocks.NewMockReferenceDataPort(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.resolver = NewLookupResolver(s.refdata, discardLogger(), s.metrics)
}

func (s *LookupResolverSuite) SetupSubTest() {
	s.SetupTest()
}

// =============================================================================
// Common Values
// =============================================================================

func (s *LookupResolverSuite) TestCommonValue() {
	ctx := context.Background()

	s.Run("found value resolves under both policies", func() {
		for _, policy := range []Policy{Optional, Required} {
			s.refdata.EXPECT().CommonValues(gomock.Any(), ListMatterTypes, "KSEC8").
				Return(page(lv("KSEC8", "Section 8 orders")), nil)

			res, err := s.resolver.CommonValue(ctx, "matter type", ListMatterTypes, "KSEC8", policy)
			s.Require().NoError(err)
			v, ok := res.Value()
			s.True(ok)
			s.False(res.IsFallback())
			s.Equal(lv("KSEC8", "Section 8 orders"), v)
		}
	})

	s.Run("unknown code falls back to identity value", func() {
		s.refdata.EXPECT().CommonValues(gomock.Any(), ListMatterTypes, "ZZZ").
			Return(nil, fmt.Errorf("common value: %w", sentinel.ErrNotFound))

		v, err := s.resolver.OptionalCommonValue(ctx, "matter type", ListMatterTypes, "ZZZ")
		s.Require().NoError(err)
		s.Equal("ZZZ", v.Code)
		s.Equal("ZZZ", v.Description)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Fallbacks.WithLabelValues("matter type")))
	})

	s.Run("required lookup with no answer is missing", func() {
		s.refdata.EXPECT().CommonValues(gomock.Any(), "XXCCMS_COURT_TYPES", "CC").Return(nil, nil)

		res, err := s.resolver.CommonValue(ctx, "attribute", "XXCCMS_COURT_TYPES", "CC", Required)
		s.Require().NoError(err)
		s.True(res.IsMissing())
		_, ok := res.Value()
		s.False(ok)
	})

	s.Run("required lookup with explicit empty page falls back", func() {
		s.refdata.EXPECT().CommonValues(gomock.Any(), "XXCCMS_COURT_TYPES", "CC").Return(page(), nil)

		res, err := s.resolver.CommonValue(ctx, "attribute", "XXCCMS_COURT_TYPES", "CC", Required)
		s.Require().NoError(err)
		s.True(res.IsFallback())
		v, ok := res.Value()
		s.True(ok)
		s.Equal(refmodels.Identity("CC"), v)
	})

	s.Run("backend failure is classified as internal", func() {
		s.refdata.EXPECT().CommonValues(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection reset"))

		_, err := s.resolver.CommonValue(ctx, "matter type", ListMatterTypes, "KSEC8", Optional)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "matter type")
	})

	s.Run("unavailable backend is classified as unavailable", func() {
		s.refdata.EXPECT().CommonValues(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, sentinel.ErrUnavailable)

		_, err := s.resolver.CommonValue(ctx, "matter type", ListMatterTypes, "KSEC8", Optional)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})

	s.Run("cancelled context is classified as timeout", func() {
		s.refdata.EXPECT().CommonValues(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, context.Canceled)

		_, err := s.resolver.CommonValue(ctx, "matter type", ListMatterTypes, "KSEC8", Optional)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

// =============================================================================
// Outcome Lookups
// =============================================================================

func (s *LookupResolverSuite) TestCourt() {
	ctx := context.Background()

	s.Run("single match is used", func() {
		s.refdata.EXPECT().Courts(gomock.Any(), "LDS").Return([]refmodels.LookupValue{lv("LDS", "Leeds Combined Court")}, nil)

		v, err := s.resolver.Court(ctx, "LDS")
		s.Require().NoError(err)
		s.Equal(lv("LDS", "Leeds Combined Court"), v)
	})

	s.Run("no match falls back to identity", func() {
		s.refdata.EXPECT().Courts(gomock.Any(), "LDS").Return([]refmodels.LookupValue{}, nil)

		v, err := s.resolver.Court(ctx, "LDS")
		s.Require().NoError(err)
		s.Equal(refmodels.Identity("LDS"), v)
	})

	s.Run("ambiguous match falls back to identity", func() {
		s.refdata.EXPECT().Courts(gomock.Any(), "LDS").Return([]refmodels.LookupValue{
			lv("LDS", "Leeds Combined Court"),
			lv("LDS", "Leeds Magistrates"),
		}, nil)

		v, err := s.resolver.Court(ctx, "LDS")
		s.Require().NoError(err)
		s.Equal(refmodels.Identity("LDS"), v)
	})
}

func (s *LookupResolverSuite) TestOutcomeResultAndStageEnd() {
	ctx := context.Background()

	s.Run("first match is returned", func() {
		s.refdata.EXPECT().OutcomeResults(gomock.Any(), "PR0001", "FOC").
			Return([]refmodels.LookupValue{lv("FOC", "Final order"), lv("FOC", "Final order (dup)")}, nil)

		v, err := s.resolver.OutcomeResult(ctx, "PR0001", "FOC")
		s.Require().NoError(err)
		s.Require().NotNil(v)
		s.Equal(lv("FOC", "Final order"), *v)
	})

	s.Run("no match is nil, not a fallback", func() {
		s.refdata.EXPECT().StageEnds(gomock.Any(), "PR0001", "SE1").Return(nil, sentinel.ErrNotFound)

		v, err := s.resolver.StageEnd(ctx, "PR0001", "SE1")
		s.Require().NoError(err)
		s.Nil(v)
	})

	s.Run("backend failure propagates", func() {
		s.refdata.EXPECT().StageEnds(gomock.Any(), "PR0001", "SE1").Return(nil, errors.New("boom"))

		_, err := s.resolver.StageEnd(ctx, "PR0001", "SE1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestRequiredDataError(t *testing.T) {
	err := requiredDataError("provider office", "99", "failed to find office with id 99")

	var rde *RequiredDataError
	if !errors.As(err, &rde) {
		t.Fatalf("expected RequiredDataError, got %T", err)
	}
	if rde.Field != "provider office" || rde.Code != "99" {
		t.Fatalf("unexpected field/code: %q/%q", rde.Field, rde.Code)
	}
	if !dErrors.HasCode(err, dErrors.CodeReferenceData) {
		t.Fatalf("expected reference data code, got %s", dErrors.CodeOf(err))
	}
	if err.Error() != "failed to find office with id 99" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
