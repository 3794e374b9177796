//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"casebridge/internal/refdata/models"
	"casebridge/internal/refdata/store/memory"
	"casebridge/internal/refdata/store/postgres"
	"casebridge/pkg/platform/sentinel"
	"casebridge/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, postgres.Tables...))

	seed, err := memory.LoadSeedFile("../memory/testdata/seed.yaml")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Import(ctx, seed))
}

func (s *PostgresStoreSuite) TestCommonValues() {
	ctx := context.Background()

	s.Run("known code", func() {
		page, err := s.store.CommonValues(ctx, "XXCCMS_MATTER_TYPES", "KSEC8")
		s.Require().NoError(err)
		s.Equal([]models.LookupValue{{Code: "KSEC8", Description: "Section 8 orders"}}, page.Content)
	})

	s.Run("unknown code in known list is an empty page", func() {
		page, err := s.store.CommonValues(ctx, "XXCCMS_MATTER_TYPES", "ZZZ")
		s.Require().NoError(err)
		s.Require().NotNil(page)
		s.Empty(page.Content)
	})

	s.Run("unknown list is not found", func() {
		_, err := s.store.CommonValues(ctx, "NO_SUCH_LIST", "X")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestSingleItemLookups() {
	ctx := context.Background()

	s.Run("proceeding type keeps decimal precision", func() {
		pt, err := s.store.ProceedingType(ctx, "PR0001")
		s.Require().NoError(err)
		s.True(pt.CostLimitation.Equal(decimal.RequireFromString("25000.00")))
		s.True(pt.StageEndRequired)
	})

	s.Run("provider offices round trip through jsonb", func() {
		p, err := s.store.Provider(ctx, 1001)
		s.Require().NoError(err)
		office, ok := p.FindOffice(20)
		s.Require().True(ok)
		s.Len(office.FeeEarners, 2)
	})

	s.Run("prior authority type details round trip", func() {
		pa, err := s.store.PriorAuthorityType(ctx, "EXP")
		s.Require().NoError(err)
		s.NotEmpty(pa.Details)
	})

	s.Run("missing rows are not found", func() {
		_, err := s.store.ProceedingType(ctx, "NOPE")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.Provider(ctx, 404)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.PriorAuthorityType(ctx, "NOPE")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestListLookups() {
	ctx := context.Background()
	criteria := models.ScopeLimitationCriteria{
		CategoryOfLaw: "MAT", MatterType: "KSEC8", ProceedingCode: "PR0001",
		LevelOfService: "3", ScopeLimitation: "FM059",
	}

	s.Run("scope limitations without emergency filter match both rows", func() {
		rows, err := s.store.ScopeLimitationDetails(ctx, criteria)
		s.Require().NoError(err)
		s.Len(rows, 2)
	})

	s.Run("emergency filter narrows to one row", func() {
		yes := true
		c := criteria
		c.Emergency = &yes
		rows, err := s.store.ScopeLimitationDetails(ctx, c)
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.True(rows[0].EmergencyCostLimitation.Equal(decimal.NewFromInt(1350)))
	})

	s.Run("duplicate courts are all returned", func() {
		courts, err := s.store.Courts(ctx, "MAN")
		s.Require().NoError(err)
		s.Len(courts, 2)
	})

	s.Run("no match is an empty slice", func() {
		courts, err := s.store.Courts(ctx, "ZZ")
		s.Require().NoError(err)
		s.NotNil(courts)
		s.Empty(courts)
	})

	s.Run("award types", func() {
		types, err := s.store.AwardTypes(ctx)
		s.Require().NoError(err)
		s.Len(types, 4)
	})

	s.Run("outcome lookups are scoped to the proceeding", func() {
		results, err := s.store.OutcomeResults(ctx, "PR0001", "FOC")
		s.Require().NoError(err)
		s.Len(results, 1)
		stages, err := s.store.StageEnds(ctx, "PR0002", "FPH")
		s.Require().NoError(err)
		s.Empty(stages)
	})
}
