// Package memory serves reference data from an in-process snapshot loaded
// from a YAML seed.
package memory

import (
	"context"
	"fmt"
	"sync"

	"casebridge/internal/refdata/models"
	"casebridge/pkg/platform/sentinel"
)

// InMemoryStore answers reference-data lookups from a seed. It is safe for
// concurrent use; Replace swaps the snapshot atomically.
type InMemoryStore struct {
	mu   sync.RWMutex
	seed *Seed

	providers           map[int]*models.ProviderDetail
	proceedingTypes     map[string]*models.ProceedingTypeDetail
	priorAuthorityTypes map[string]*models.PriorAuthorityTypeDetail
}

func New(seed *Seed) *InMemoryStore {
	s := &InMemoryStore{}
	s.Replace(seed)
	return s
}

// Replace swaps in a new snapshot. A nil seed empties the store.
func (s *InMemoryStore) Replace(seed *Seed) {
	if seed == nil {
		seed = &Seed{}
	}
	providers := make(map[int]*models.ProviderDetail, len(seed.Providers))
	for i := range seed.Providers {
		providers[seed.Providers[i].ID] = &seed.Providers[i]
	}
	proceedingTypes := make(map[string]*models.ProceedingTypeDetail, len(seed.ProceedingTypes))
	for i := range seed.ProceedingTypes {
		proceedingTypes[seed.ProceedingTypes[i].Code] = &seed.ProceedingTypes[i]
	}
	priorAuthorityTypes := make(map[string]*models.PriorAuthorityTypeDetail, len(seed.PriorAuthorityTypes))
	for i := range seed.PriorAuthorityTypes {
		priorAuthorityTypes[seed.PriorAuthorityTypes[i].Code] = &seed.PriorAuthorityTypes[i]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
	s.providers = providers
	s.proceedingTypes = proceedingTypes
	s.priorAuthorityTypes = priorAuthorityTypes
}

// CommonValues answers ErrNotFound for an unknown list and an empty page for
// an unknown code within a known list.
func (s *InMemoryStore) CommonValues(_ context.Context, listCode, code string) (*models.CommonValues, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.seed.CommonValues[listCode]
	if !ok {
		return nil, fmt.Errorf("common value list %s: %w", listCode, sentinel.ErrNotFound)
	}
	out := &models.CommonValues{Content: []models.LookupValue{}}
	for _, v := range values {
		if v.Code == code {
			out.Content = append(out.Content, v)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ProceedingType(_ context.Context, code string) (*models.ProceedingTypeDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.proceedingTypes[code]
	if !ok {
		return nil, fmt.Errorf("proceeding type %s: %w", code, sentinel.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) Provider(_ context.Context, firmID int) (*models.ProviderDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[firmID]
	if !ok {
		return nil, fmt.Errorf("provider %d: %w", firmID, sentinel.ErrNotFound)
	}
	return cloneProvider(p), nil
}

func (s *InMemoryStore) ScopeLimitationDetails(_ context.Context, criteria models.ScopeLimitationCriteria) ([]models.ScopeLimitationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ScopeLimitationDetail{}
	for _, d := range s.seed.ScopeLimitations {
		if d.Matches(criteria) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *InMemoryStore) AwardTypes(_ context.Context) ([]models.AwardType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.AwardType{}, s.seed.AwardTypes...), nil
}

func (s *InMemoryStore) PriorAuthorityType(_ context.Context, code string) (*models.PriorAuthorityTypeDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.priorAuthorityTypes[code]
	if !ok {
		return nil, fmt.Errorf("prior authority type %s: %w", code, sentinel.ErrNotFound)
	}
	cp := *p
	cp.Details = append([]models.PriorAuthorityDetail(nil), p.Details...)
	return &cp, nil
}

// cloneProvider copies the offices and their fee earners so callers never
// share the snapshot's slices.
func cloneProvider(p *models.ProviderDetail) *models.ProviderDetail {
	cp := *p
	cp.Offices = make([]models.Office, len(p.Offices))
	for i, o := range p.Offices {
		o.FeeEarners = append([]models.ContactDetail(nil), o.FeeEarners...)
		cp.Offices[i] = o
	}
	return &cp
}

func (s *InMemoryStore) Courts(_ context.Context, code string) ([]models.LookupValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.LookupValue{}
	for _, c := range s.seed.Courts {
		if c.Code == code {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryStore) OutcomeResults(_ context.Context, proceedingCode, resultCode string) ([]models.LookupValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterOutcomes(s.seed.OutcomeResults, proceedingCode, resultCode), nil
}

func (s *InMemoryStore) StageEnds(_ context.Context, proceedingCode, stageEndCode string) ([]models.LookupValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterOutcomes(s.seed.StageEnds, proceedingCode, stageEndCode), nil
}

func filterOutcomes(rows []models.OutcomeLookup, proceedingCode, code string) []models.LookupValue {
	out := []models.LookupValue{}
	for _, r := range rows {
		if r.ProceedingCode == proceedingCode && r.Code == code {
			out = append(out, r.Value())
		}
	}
	return out
}
