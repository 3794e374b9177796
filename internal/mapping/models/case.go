package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application and amendment type codes as sent by the case source.
const (
	AppTypeSubstantive               = "SUBSTANTIVE"
	AppTypeSubstantiveDevolvedPowers = "SUBDP"
	AppTypeEmergency                 = "EMER"
	AppTypeEmergencyDevolvedPowers   = "DP"
	AppTypeExceptionalCaseFunding    = "ECF"
)

// StatusDraft is the proceeding status of a proceeding that has not yet been
// submitted to the case source (an amendment in progress).
const StatusDraft = "DRAFT"

// CaseRecord is a case as received from the case-management source. The
// mapping engine treats it as read-only.
type CaseRecord struct {
	CaseReference      string
	ApplicationDetails *ApplicationDetails
	Proceedings        []*ProceedingRecord
	PriorAuthorities   []*PriorAuthorityRecord
	Awards             []*AwardRecord
}

// ProviderIdentity points at the firm, office and contacts handling the case.
type ProviderIdentity struct {
	ProviderFirmID      int
	ProviderOfficeID    int
	FeeEarnerContactID  string
	SupervisorContactID string
	ProviderCaseRef     string
}

// ApplicationDetails is the application part of a case.
type ApplicationDetails struct {
	Provider                 ProviderIdentity
	CertificateType          string
	ApplicationAmendmentType string
	CategoryOfLaw            *CategoryOfLaw
	DevolvedPowersDate       *time.Time
	MeansAssessments         []*AssessmentResult
	MeritsAssessments        []*AssessmentResult
}

// CategoryOfLaw carries the category code and the money already paid against it.
type CategoryOfLaw struct {
	Code            string
	Description     string
	CostLimitations []CostLimitation
	TotalPaidToDate *decimal.Decimal
}

// CostLimitation is one billing entry against the category of law.
type CostLimitation struct {
	BillingProviderID string
	PaidToDate        *decimal.Decimal
	Amount            *decimal.Decimal
}

// AssessmentResult is one means or merits assessment in the case history.
type AssessmentResult struct {
	AssessmentID string
	Date         *time.Time
	Result       string
}

// ProceedingRecord is a proceeding as recorded in the case source.
type ProceedingRecord struct {
	ProceedingID      string
	LeadProceeding    bool
	ProceedingType    string
	Status            string
	MatterType        string
	LevelOfService    string
	ClientInvolvement string
	ScopeLimitations  []*ScopeLimitation
	Outcome           *OutcomeRecord
}

// IsDraft reports whether the proceeding carries the draft status.
func (p *ProceedingRecord) IsDraft() bool {
	return p != nil && p.Status == StatusDraft
}

// ScopeLimitation bounds the work permitted under a proceeding.
type ScopeLimitation struct {
	Code    string
	Wording string
}

// OutcomeRecord is the recorded outcome of a proceeding.
type OutcomeRecord struct {
	CourtCode    string
	ResultCode   string
	StageEndCode string
	OutcomeDate  *time.Time
	Description  string
}

// PriorAuthorityRecord is a prior authority granted on the case.
type PriorAuthorityRecord struct {
	Type       string
	Summary    string
	Amount     *decimal.Decimal
	Attributes []PriorAuthorityAttribute
}

// PriorAuthorityAttribute is one name/value pair on a prior authority.
type PriorAuthorityAttribute struct {
	Name  string
	Value string
}

// AwardRecord is an award recorded on the case. Only AwardType matters to the
// engine; the remaining payload is carried through untouched.
type AwardRecord struct {
	AwardID     string
	AwardType   string
	Description string
	Amount      *decimal.Decimal
	Details     map[string]string
}
