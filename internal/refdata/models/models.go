// Package models holds the value types returned by reference-data backends.
package models

import "github.com/shopspring/decimal"

// LookupValue is the universal (code, description) pair returned by every
// reference-data resolution, real or synthesised.
type LookupValue struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// Identity builds the fallback value used when no reference data matches:
// the raw code doubles as its own description.
func Identity(code string) LookupValue {
	return LookupValue{Code: code, Description: code}
}

// CommonValues is the result page of a common-value query. A nil page means
// the backend answered nothing at all; an empty Content means it answered
// "no data" for the code.
type CommonValues struct {
	Content []LookupValue `json:"content"`
}

// First returns the first entry of the page.
func (c *CommonValues) First() (LookupValue, bool) {
	if c == nil || len(c.Content) == 0 {
		return LookupValue{}, false
	}
	return c.Content[0], true
}

// ContactDetail is a fee earner or supervisor registered against an office.
type ContactDetail struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Office is a provider office with its fee earners.
type Office struct {
	ID         int             `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	FeeEarners []ContactDetail `json:"fee_earners" yaml:"fee_earners"`
}

// ProviderDetail is the provider firm as known to reference data.
type ProviderDetail struct {
	ID      int      `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Offices []Office `json:"offices" yaml:"offices"`
}

// FindOffice returns the office with the given id.
func (p *ProviderDetail) FindOffice(id int) (*Office, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Offices {
		if p.Offices[i].ID == id {
			return &p.Offices[i], true
		}
	}
	return nil, false
}

// ProceedingTypeDetail describes a proceeding type.
type ProceedingTypeDetail struct {
	Code                   string          `json:"code" yaml:"code"`
	Name                   string          `json:"name" yaml:"name"`
	Description            string          `json:"description" yaml:"description"`
	MatterType             string          `json:"matter_type" yaml:"matter_type"`
	LarScope               string          `json:"lar_scope" yaml:"lar_scope"`
	CostLimitation         decimal.Decimal `json:"cost_limitation" yaml:"cost_limitation"`
	StageEndRequired       bool            `json:"stage_end_required" yaml:"stage_end_required"`
	OutcomeResultsRequired bool            `json:"outcome_results_required" yaml:"outcome_results_required"`
}

// ScopeLimitationCriteria selects scope-limitation detail rows. Emergency is
// nil when the flag must not take part in the match.
type ScopeLimitationCriteria struct {
	CategoryOfLaw   string
	MatterType      string
	ProceedingCode  string
	LevelOfService  string
	ScopeLimitation string
	Emergency       *bool
}

// ScopeLimitationDetail carries the cost limitations for one scope-limitation
// combination.
type ScopeLimitationDetail struct {
	CategoryOfLaw           string          `json:"category_of_law" yaml:"category_of_law"`
	MatterType              string          `json:"matter_type" yaml:"matter_type"`
	ProceedingCode          string          `json:"proceeding_code" yaml:"proceeding_code"`
	LevelOfService          string          `json:"level_of_service" yaml:"level_of_service"`
	ScopeLimitation         string          `json:"scope_limitation" yaml:"scope_limitation"`
	Emergency               bool            `json:"emergency" yaml:"emergency"`
	CostLimitation          decimal.Decimal `json:"cost_limitation" yaml:"cost_limitation"`
	EmergencyCostLimitation decimal.Decimal `json:"emergency_cost_limitation" yaml:"emergency_cost_limitation"`
}

// Matches reports whether the detail row satisfies c.
func (d ScopeLimitationDetail) Matches(c ScopeLimitationCriteria) bool {
	if d.CategoryOfLaw != c.CategoryOfLaw ||
		d.MatterType != c.MatterType ||
		d.ProceedingCode != c.ProceedingCode ||
		d.LevelOfService != c.LevelOfService ||
		d.ScopeLimitation != c.ScopeLimitation {
		return false
	}
	return c.Emergency == nil || d.Emergency == *c.Emergency
}

// AwardCategory is one of the four fixed award buckets.
type AwardCategory string

const (
	AwardCategoryCost       AwardCategory = "COST"
	AwardCategoryFinancial  AwardCategory = "FINANCIAL"
	AwardCategoryLand       AwardCategory = "LAND"
	AwardCategoryOtherAsset AwardCategory = "OTHER_ASSET"
)

// IsValid reports whether c is one of the known buckets.
func (c AwardCategory) IsValid() bool {
	switch c {
	case AwardCategoryCost, AwardCategoryFinancial, AwardCategoryLand, AwardCategoryOtherAsset:
		return true
	}
	return false
}

// AwardType maps an award type code onto its category.
type AwardType struct {
	Code        string        `json:"code" yaml:"code"`
	Description string        `json:"description" yaml:"description"`
	Category    AwardCategory `json:"award_type" yaml:"award_type"`
}

// DataTypeLOV marks a prior-authority attribute resolved against a list of values.
const DataTypeLOV = "LOV"

// PriorAuthorityDetail defines one attribute of a prior authority type.
type PriorAuthorityDetail struct {
	Code      string `json:"code" yaml:"code"`
	Name      string `json:"name" yaml:"name"`
	DataType  string `json:"data_type" yaml:"data_type"`
	LovCode   string `json:"lov_code" yaml:"lov_code"`
	Mandatory bool   `json:"mandatory" yaml:"mandatory"`
}

// IsListOfValues reports whether the attribute needs a common-value lookup.
func (d PriorAuthorityDetail) IsListOfValues() bool {
	return d.DataType == DataTypeLOV
}

// PriorAuthorityTypeDetail describes a prior authority type and its attributes.
type PriorAuthorityTypeDetail struct {
	Code          string                 `json:"code" yaml:"code"`
	Description   string                 `json:"description" yaml:"description"`
	ValueRequired bool                   `json:"value_required" yaml:"value_required"`
	Details       []PriorAuthorityDetail `json:"details" yaml:"details"`
}

// OutcomeLookup is an outcome result or stage end row; both are scoped to a
// proceeding type.
type OutcomeLookup struct {
	ProceedingCode string `json:"proceeding_code" yaml:"proceeding_code"`
	Code           string `json:"code" yaml:"code"`
	Description    string `json:"description" yaml:"description"`
}

// Value drops the proceeding scope.
func (o OutcomeLookup) Value() LookupValue {
	return LookupValue{Code: o.Code, Description: o.Description}
}
