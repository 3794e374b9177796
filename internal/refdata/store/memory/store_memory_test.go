package memory

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"casebridge/internal/refdata/models"
	"casebridge/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	seed, err := LoadSeedFile("testdata/seed.yaml")
	s.Require().NoError(err)
	s.Require().NoError(seed.Validate())
	s.store = New(seed)
}

func (s *InMemoryStoreSuite) TestCommonValues() {
	ctx := context.Background()

	s.Run("known code", func() {
		page, err := s.store.CommonValues(ctx, "XXCCMS_MATTER_TYPES", "KSEC8")
		s.Require().NoError(err)
		v, ok := page.First()
		s.True(ok)
		s.Equal("Section 8 orders", v.Description)
	})

	s.Run("unknown code in known list is an empty page", func() {
		page, err := s.store.CommonValues(ctx, "XXCCMS_MATTER_TYPES", "ZZZ")
		s.Require().NoError(err)
		s.Require().NotNil(page)
		s.Empty(page.Content)
	})

	s.Run("unknown list is not found", func() {
		_, err := s.store.CommonValues(ctx, "XXCCMS_NOPE", "KSEC8")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestSingleItemLookups() {
	ctx := context.Background()

	provider, err := s.store.Provider(ctx, 1001)
	s.Require().NoError(err)
	office, ok := provider.FindOffice(20)
	s.Require().True(ok)
	s.Len(office.FeeEarners, 2)

	_, err = s.store.Provider(ctx, 9)
	s.ErrorIs(err, sentinel.ErrNotFound)

	pt, err := s.store.ProceedingType(ctx, "PR0001")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("25000").Equal(pt.CostLimitation))
	s.True(pt.StageEndRequired)

	_, err = s.store.ProceedingType(ctx, "PR9999")
	s.ErrorIs(err, sentinel.ErrNotFound)

	pa, err := s.store.PriorAuthorityType(ctx, "EXP")
	s.Require().NoError(err)
	s.Require().Len(pa.Details, 2)
	s.True(pa.Details[0].IsListOfValues())

	_, err = s.store.PriorAuthorityType(ctx, "NOPE")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestLookupsDoNotShareSnapshot() {
	ctx := context.Background()

	s.Run("provider offices and fee earners", func() {
		provider, err := s.store.Provider(ctx, 1001)
		s.Require().NoError(err)
		office, ok := provider.FindOffice(20)
		s.Require().True(ok)
		office.Name = "changed"
		office.FeeEarners[0].Name = "changed"
		provider.Offices = append(provider.Offices, models.Office{ID: 99})

		again, err := s.store.Provider(ctx, 1001)
		s.Require().NoError(err)
		fresh, ok := again.FindOffice(20)
		s.Require().True(ok)
		s.NotEqual("changed", fresh.Name)
		s.Equal("Ada Fee-Earner", fresh.FeeEarners[0].Name)
		_, ok = again.FindOffice(99)
		s.False(ok)
	})

	s.Run("prior authority details", func() {
		pa, err := s.store.PriorAuthorityType(ctx, "EXP")
		s.Require().NoError(err)
		s.Require().NotEmpty(pa.Details)
		original := pa.Details[0].LovCode
		pa.Details[0].LovCode = "changed"

		again, err := s.store.PriorAuthorityType(ctx, "EXP")
		s.Require().NoError(err)
		s.Equal(original, again.Details[0].LovCode)
	})
}

func (s *InMemoryStoreSuite) TestScopeLimitationDetails() {
	ctx := context.Background()
	criteria := models.ScopeLimitationCriteria{
		CategoryOfLaw:   "MAT",
		MatterType:      "KSEC8",
		ProceedingCode:  "PR0001",
		LevelOfService:  "3",
		ScopeLimitation: "FM059",
	}

	s.Run("without the emergency flag both rows match", func() {
		rows, err := s.store.ScopeLimitationDetails(ctx, criteria)
		s.Require().NoError(err)
		s.Len(rows, 2)
	})

	s.Run("with the emergency flag only the emergency row matches", func() {
		emergency := true
		c := criteria
		c.Emergency = &emergency
		rows, err := s.store.ScopeLimitationDetails(ctx, c)
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.True(decimal.RequireFromString("1350").Equal(rows[0].EmergencyCostLimitation))
	})

	s.Run("no match is an empty slice", func() {
		c := criteria
		c.ScopeLimitation = "NONE"
		rows, err := s.store.ScopeLimitationDetails(ctx, c)
		s.Require().NoError(err)
		s.NotNil(rows)
		s.Empty(rows)
	})
}

func (s *InMemoryStoreSuite) TestListLookups() {
	ctx := context.Background()

	courts, err := s.store.Courts(ctx, "MAN")
	s.Require().NoError(err)
	s.Len(courts, 2)

	courts, err = s.store.Courts(ctx, "LDS")
	s.Require().NoError(err)
	s.Len(courts, 1)

	results, err := s.store.OutcomeResults(ctx, "PR0001", "FOC")
	s.Require().NoError(err)
	s.Equal([]models.LookupValue{{Code: "FOC", Description: "Final order made"}}, results)

	results, err = s.store.OutcomeResults(ctx, "PR0002", "FOC")
	s.Require().NoError(err)
	s.Empty(results)

	stageEnds, err := s.store.StageEnds(ctx, "PR0001", "FPH")
	s.Require().NoError(err)
	s.Len(stageEnds, 1)

	awardTypes, err := s.store.AwardTypes(ctx)
	s.Require().NoError(err)
	s.Len(awardTypes, 4)
}

func (s *InMemoryStoreSuite) TestReplaceIsSafeUnderConcurrentReads() {
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = s.store.Provider(ctx, 1001)
				_, _ = s.store.CommonValues(ctx, "XXCCMS_MATTER_TYPES", "KSEC8")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		s.store.Replace(&Seed{})
	}
	wg.Wait()

	_, err := s.store.Provider(ctx, 1001)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestLoadSeed(t *testing.T) {
	t.Run("empty document yields an empty seed", func(t *testing.T) {
		seed, err := LoadSeed(strings.NewReader(""))
		require.NoError(t, err)
		assert.NoError(t, seed.Validate())
		assert.Equal(t, 0, seed.Counts()["providers"])
	})

	t.Run("unknown tables are rejected", func(t *testing.T) {
		_, err := LoadSeed(strings.NewReader("proceedings_types: []\n"))
		require.Error(t, err)
	})

	t.Run("counts rows per table", func(t *testing.T) {
		seed, err := LoadSeedFile("testdata/seed.yaml")
		require.NoError(t, err)
		counts := seed.Counts()
		assert.Equal(t, 1, counts["providers"])
		assert.Equal(t, 4, counts["award_types"])
		assert.Equal(t, 11, counts["common_values"])
		assert.Equal(t, 3, counts["courts"])
	})
}

func TestSeedValidate(t *testing.T) {
	seed, err := LoadSeed(strings.NewReader(`
common_values:
  XXCCMS_MATTER_TYPES:
    - {code: KSEC8, description: one}
    - {code: KSEC8, description: two}
proceeding_types:
  - {code: PR0001}
  - {code: PR0001}
award_types:
  - {code: COSTJ, award_type: COST}
  - {code: ODD, award_type: SOMETHING}
courts:
  - {code: MAN, description: a}
  - {code: MAN, description: b}
`))
	require.NoError(t, err)

	err = seed.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `common_values.XXCCMS_MATTER_TYPES: duplicate key "KSEC8"`)
	assert.Contains(t, msg, `proceeding_types: duplicate key "PR0001"`)
	assert.Contains(t, msg, `award_types: "ODD" has unknown category "SOMETHING"`)
	assert.NotContains(t, msg, "courts")
}
