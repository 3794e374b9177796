package models

import (
	"time"

	"github.com/shopspring/decimal"

	refmodels "casebridge/internal/refdata/models"
)

// MappingContext is the fully resolved view of a case that the canonical
// application mapper reads. It is built once per call and never mutated.
type MappingContext struct {
	Case *CaseRecord

	ProviderDetail    *refmodels.ProviderDetail
	ProviderOffice    *refmodels.Office
	FeeEarnerContact  *refmodels.ContactDetail
	SupervisorContact *refmodels.ContactDetail

	// CertificateType is nil only when the case carries no certificate type code.
	CertificateType *refmodels.LookupValue
	ApplicationType *refmodels.LookupValue

	DevolvedPowers              DevolvedPowers
	CurrentProviderBilledAmount decimal.Decimal

	MeansAssessment  *AssessmentResult
	MeritsAssessment *AssessmentResult

	CaseWithOnlyDraftProceedings bool
	AmendmentProceedingsInEbs    []*ProceedingMappingContext
	Proceedings                  []*ProceedingMappingContext
	PriorAuthorities             []*PriorAuthorityMappingContext
	CaseOutcome                  *CaseOutcomeMappingContext
}

// DevolvedPowers records whether the provider acted under delegated authority.
type DevolvedPowers struct {
	Used bool
	// Date is set only when Used is true.
	Date *time.Time
}

// ProceedingMappingContext is one enriched proceeding.
type ProceedingMappingContext struct {
	Proceeding *ProceedingRecord

	ProceedingType    *refmodels.ProceedingTypeDetail
	Status            refmodels.LookupValue
	MatterType        refmodels.LookupValue
	LevelOfService    refmodels.LookupValue
	ClientInvolvement refmodels.LookupValue

	ProceedingCostLimitation decimal.Decimal
	ScopeLimitations         []ScopeLimitationMappingContext

	// Outcome fields stay nil when the proceeding has no outcome. OutcomeResult
	// and StageEnd may also be nil when reference data holds no match.
	Court         *refmodels.LookupValue
	OutcomeResult *refmodels.LookupValue
	StageEnd      *refmodels.LookupValue
}

// HasOutcome reports whether the proceeding carries a recorded outcome.
func (p *ProceedingMappingContext) HasOutcome() bool {
	return p != nil && p.Proceeding != nil && p.Proceeding.Outcome != nil
}

// ScopeLimitationMappingContext pairs a scope limitation with its display value.
type ScopeLimitationMappingContext struct {
	ScopeLimitation *ScopeLimitation
	Display         refmodels.LookupValue
}

// PriorAuthorityMappingContext is one enriched prior authority.
type PriorAuthorityMappingContext struct {
	PriorAuthority     *PriorAuthorityRecord
	PriorAuthorityType *refmodels.PriorAuthorityTypeDetail
	Items              []PriorAuthorityItemMappingContext
}

// PriorAuthorityItemMappingContext pairs an attribute with its definition (nil
// when the type does not define it) and display value.
type PriorAuthorityItemMappingContext struct {
	Attribute  PriorAuthorityAttribute
	Definition *refmodels.PriorAuthorityDetail
	Value      refmodels.LookupValue
}

// CaseOutcomeMappingContext groups the case awards by category and carries the
// enriched proceedings. Award buckets are nil when the case records no awards
// at all, and empty when awards exist but none fall in the bucket.
type CaseOutcomeMappingContext struct {
	CostAwards         []*AwardRecord
	FinancialAwards    []*AwardRecord
	LandAwards         []*AwardRecord
	OtherAssetAwards   []*AwardRecord
	ProceedingOutcomes []*ProceedingMappingContext
}
