package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"casebridge/internal/mapping/mocks"
	"casebridge/internal/refdata/models"
	"casebridge/pkg/platform/sentinel"
)

// =============================================================================
// Read-Through Cache Test Suite
// =============================================================================
// Justification: the cache sits in front of every lookup. A cached miss would
// hide newly published reference data, and a broken backend must never fail
// a mapping build.

type ReadThroughSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	upstream *mocks.MockReferenceDataPort
	backend  *MemoryBackend
	cache    *ReadThrough
}

func TestReadThroughSuite(t *testing.T) {
	suite.Run(t, new(ReadThroughSuite))
}

func (s *ReadThroughSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.upstream = mocks.NewMockReferenceDataPort(s.ctrl)
	s.backend = NewMemoryBackend()
	port := New(s.upstream, s.backend, time.Minute, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.cache = port.(*ReadThrough)
}

func (s *ReadThroughSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *ReadThroughSuite) TestHits() {
	ctx := context.Background()

	s.Run("second proceeding type lookup is served from the backend", func() {
		pt := &models.ProceedingTypeDetail{
			Code:           "PR0001",
			Description:    "Child arrangements order",
			CostLimitation: decimal.RequireFromString("25000.50"),
		}
		s.upstream.EXPECT().ProceedingType(gomock.Any(), "PR0001").Return(pt, nil).Times(1)

		first, err := s.cache.ProceedingType(ctx, "PR0001")
		s.Require().NoError(err)
		second, err := s.cache.ProceedingType(ctx, "PR0001")
		s.Require().NoError(err)

		s.Equal(pt.Code, second.Code)
		s.True(first.CostLimitation.Equal(second.CostLimitation))
		s.Equal(1, s.backend.Len())
	})

	s.Run("common values are keyed by list and code", func() {
		s.upstream.EXPECT().CommonValues(gomock.Any(), "LIST_A", "X").
			Return(&models.CommonValues{Content: []models.LookupValue{{Code: "X", Description: "A"}}}, nil).Times(1)
		s.upstream.EXPECT().CommonValues(gomock.Any(), "LIST_B", "X").
			Return(&models.CommonValues{Content: []models.LookupValue{{Code: "X", Description: "B"}}}, nil).Times(1)

		for range 2 {
			a, err := s.cache.CommonValues(ctx, "LIST_A", "X")
			s.Require().NoError(err)
			b, err := s.cache.CommonValues(ctx, "LIST_B", "X")
			s.Require().NoError(err)
			s.Equal("A", a.Content[0].Description)
			s.Equal("B", b.Content[0].Description)
		}
	})

	s.Run("scope limitation criteria with and without emergency use different keys", func() {
		yes := true
		base := models.ScopeLimitationCriteria{CategoryOfLaw: "MAT", MatterType: "KSEC8", ProceedingCode: "PR0001", LevelOfService: "3", ScopeLimitation: "FM059"}
		emergency := base
		emergency.Emergency = &yes
		row := []models.ScopeLimitationDetail{{ScopeLimitation: "FM059", CostLimitation: decimal.NewFromInt(1350)}}

		s.upstream.EXPECT().ScopeLimitationDetails(gomock.Any(), base).Return(row, nil).Times(1)
		s.upstream.EXPECT().ScopeLimitationDetails(gomock.Any(), emergency).Return(row, nil).Times(1)

		for range 2 {
			_, err := s.cache.ScopeLimitationDetails(ctx, base)
			s.Require().NoError(err)
			_, err = s.cache.ScopeLimitationDetails(ctx, emergency)
			s.Require().NoError(err)
		}
		s.Equal(2, s.backend.Len())
	})
}

func (s *ReadThroughSuite) TestMissesAreNotCached() {
	ctx := context.Background()

	s.Run("not found reaches upstream every time", func() {
		s.upstream.EXPECT().Provider(gomock.Any(), 7).
			Return(nil, fmt.Errorf("provider 7: %w", sentinel.ErrNotFound)).Times(2)

		for range 2 {
			_, err := s.cache.Provider(ctx, 7)
			s.Require().ErrorIs(err, sentinel.ErrNotFound)
		}
		s.Zero(s.backend.Len())
	})

	s.Run("empty common value page is not cached", func() {
		s.upstream.EXPECT().CommonValues(gomock.Any(), "LIST", "X").
			Return(&models.CommonValues{Content: []models.LookupValue{}}, nil).Times(2)

		for range 2 {
			page, err := s.cache.CommonValues(ctx, "LIST", "X")
			s.Require().NoError(err)
			s.NotNil(page)
			s.Empty(page.Content)
		}
	})

	s.Run("empty court list is not cached", func() {
		s.upstream.EXPECT().Courts(gomock.Any(), "ZZ").Return([]models.LookupValue{}, nil).Times(2)

		for range 2 {
			courts, err := s.cache.Courts(ctx, "ZZ")
			s.Require().NoError(err)
			s.Empty(courts)
		}
	})
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (s *ReadThroughSuite) TestBackendFailure() {
	s.Run("lookups fall through to upstream", func() {
		port := New(s.upstream, failingBackend{}, time.Minute)
		s.upstream.EXPECT().AwardTypes(gomock.Any()).
			Return([]models.AwardType{{Code: "COSTJ", Category: models.AwardCategoryCost}}, nil).Times(2)

		for range 2 {
			types, err := port.AwardTypes(context.Background())
			s.Require().NoError(err)
			s.Len(types, 1)
		}
	})

	s.Run("undecodable entry is reloaded", func() {
		key := Key("stage_ends", "PR0001", "FPH")
		s.Require().NoError(s.backend.Set(context.Background(), key, []byte("{not json"), time.Minute))
		s.upstream.EXPECT().StageEnds(gomock.Any(), "PR0001", "FPH").
			Return([]models.LookupValue{{Code: "FPH", Description: "Final hearing"}}, nil)

		values, err := s.cache.StageEnds(context.Background(), "PR0001", "FPH")
		s.Require().NoError(err)
		s.Equal("Final hearing", values[0].Description)
	})
}

func TestNew_DisabledReturnsUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	upstream := mocks.NewMockReferenceDataPort(ctrl)

	assert.Same(t, upstream, New(upstream, NewMemoryBackend(), 0))
	assert.Same(t, upstream, New(upstream, nil, time.Minute))
}

func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewMemoryBackend()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Set(ctx, "k", []byte("v"), time.Minute))

	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, err = b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, b.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "refdata:common_values:XXCCMS_MATTER_TYPES:KSEC8", Key("common_values", "XXCCMS_MATTER_TYPES", "KSEC8"))
	assert.Equal(t, "refdata:award_types:all", Key("award_types", "all"))
}
