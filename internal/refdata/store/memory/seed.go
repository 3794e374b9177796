package memory

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"casebridge/internal/refdata/models"
)

// Seed is the YAML document the in-memory store is loaded from.
type Seed struct {
	CommonValues        map[string][]models.LookupValue   `yaml:"common_values"`
	Providers           []models.ProviderDetail           `yaml:"providers"`
	ProceedingTypes     []models.ProceedingTypeDetail     `yaml:"proceeding_types"`
	ScopeLimitations    []models.ScopeLimitationDetail    `yaml:"scope_limitations"`
	AwardTypes          []models.AwardType                `yaml:"award_types"`
	PriorAuthorityTypes []models.PriorAuthorityTypeDetail `yaml:"prior_authority_types"`
	Courts              []models.LookupValue              `yaml:"courts"`
	OutcomeResults      []models.OutcomeLookup            `yaml:"outcome_results"`
	StageEnds           []models.OutcomeLookup            `yaml:"stage_ends"`
}

// LoadSeed decodes a seed document. Unknown keys are rejected so typos in
// table names surface at load time.
func LoadSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("decode reference data seed: %w", err)
	}
	return &seed, nil
}

// LoadSeedFile opens and decodes the seed at path.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference data seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// Counts returns the number of rows per table.
func (s *Seed) Counts() map[string]int {
	commonValues := 0
	for _, values := range s.CommonValues {
		commonValues += len(values)
	}
	return map[string]int{
		"common_values":         commonValues,
		"providers":             len(s.Providers),
		"proceeding_types":      len(s.ProceedingTypes),
		"scope_limitations":     len(s.ScopeLimitations),
		"award_types":           len(s.AwardTypes),
		"prior_authority_types": len(s.PriorAuthorityTypes),
		"courts":                len(s.Courts),
		"outcome_results":       len(s.OutcomeResults),
		"stage_ends":            len(s.StageEnds),
	}
}

// Validate reports duplicate keys and award types with an unknown category.
// Courts are allowed to repeat a code; the mapping engine treats that as
// ambiguous rather than invalid.
func (s *Seed) Validate() error {
	var errs []error
	dup := func(table, key string, seen map[string]struct{}) {
		if _, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s: duplicate key %q", table, key))
			return
		}
		seen[key] = struct{}{}
	}

	for list, values := range s.CommonValues {
		seen := map[string]struct{}{}
		for _, v := range values {
			dup("common_values."+list, v.Code, seen)
		}
	}

	seen := map[string]struct{}{}
	for _, p := range s.Providers {
		dup("providers", fmt.Sprint(p.ID), seen)
		offices := map[string]struct{}{}
		for _, o := range p.Offices {
			dup(fmt.Sprintf("providers.%d.offices", p.ID), fmt.Sprint(o.ID), offices)
		}
	}

	seen = map[string]struct{}{}
	for _, p := range s.ProceedingTypes {
		dup("proceeding_types", p.Code, seen)
	}

	seen = map[string]struct{}{}
	for _, d := range s.ScopeLimitations {
		key := fmt.Sprintf("%s/%s/%s/%s/%s/%t", d.CategoryOfLaw, d.MatterType, d.ProceedingCode, d.LevelOfService, d.ScopeLimitation, d.Emergency)
		dup("scope_limitations", key, seen)
	}

	seen = map[string]struct{}{}
	for _, a := range s.AwardTypes {
		dup("award_types", a.Code, seen)
		if !a.Category.IsValid() {
			errs = append(errs, fmt.Errorf("award_types: %q has unknown category %q", a.Code, a.Category))
		}
	}

	seen = map[string]struct{}{}
	for _, p := range s.PriorAuthorityTypes {
		dup("prior_authority_types", p.Code, seen)
	}

	seen = map[string]struct{}{}
	for _, o := range s.OutcomeResults {
		dup("outcome_results", o.ProceedingCode+"/"+o.Code, seen)
	}

	seen = map[string]struct{}{}
	for _, o := range s.StageEnds {
		dup("stage_ends", o.ProceedingCode+"/"+o.Code, seen)
	}

	return errors.Join(errs...)
}
