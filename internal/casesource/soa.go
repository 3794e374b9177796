package casesource

import (
	"github.com/shopspring/decimal"

	"casebridge/internal/mapping/models"
)

type soaDocument struct {
	CaseDetails *soaCase `json:"case_details"`
}

type soaCase struct {
	CaseReference    string              `json:"case_reference"`
	Application      *soaApplication     `json:"application"`
	Proceedings      []soaProceeding     `json:"proceedings"`
	PriorAuthorities []soaPriorAuthority `json:"prior_authorities"`
	Awards           []soaAward          `json:"awards"`
}

type soaApplication struct {
	Provider           soaProvider       `json:"provider"`
	CertificateType    string            `json:"certificate_type"`
	ApplicationType    string            `json:"application_type"`
	CategoryOfLaw      *soaCategoryOfLaw `json:"category_of_law"`
	DevolvedPowersDate *date             `json:"devolved_powers_date"`
	Assessments        soaAssessments    `json:"assessments"`
}

type soaProvider struct {
	FirmID       int    `json:"firm_id"`
	OfficeID     int    `json:"office_id"`
	FeeEarnerID  string `json:"fee_earner_id"`
	SupervisorID string `json:"supervisor_id"`
	CaseRef      string `json:"case_ref"`
}

type soaCategoryOfLaw struct {
	Code            string              `json:"code"`
	Description     string              `json:"description"`
	CostLimitations []soaCostLimitation `json:"cost_limitations"`
	TotalPaidToDate *decimal.Decimal    `json:"total_paid_to_date"`
}

type soaCostLimitation struct {
	BillingProviderID string           `json:"billing_provider_id"`
	PaidToDate        *decimal.Decimal `json:"paid_to_date"`
	Amount            *decimal.Decimal `json:"amount"`
}

type soaAssessments struct {
	Means  []soaAssessment `json:"means"`
	Merits []soaAssessment `json:"merits"`
}

type soaAssessment struct {
	AssessmentID string `json:"assessment_id"`
	Date         *date  `json:"date"`
	Result       string `json:"result"`
}

type soaProceeding struct {
	ProceedingID      string               `json:"proceeding_id"`
	Lead              bool                 `json:"lead"`
	ProceedingType    string               `json:"proceeding_type"`
	Status            string               `json:"status"`
	MatterType        string               `json:"matter_type"`
	LevelOfService    string               `json:"level_of_service"`
	ClientInvolvement string               `json:"client_involvement"`
	ScopeLimitations  []soaScopeLimitation `json:"scope_limitations"`
	Outcome           *soaOutcome          `json:"outcome"`
}

type soaScopeLimitation struct {
	Code    string `json:"code"`
	Wording string `json:"wording"`
}

type soaOutcome struct {
	CourtCode    string `json:"court_code"`
	ResultCode   string `json:"result_code"`
	StageEndCode string `json:"stage_end_code"`
	OutcomeDate  *date  `json:"outcome_date"`
	Description  string `json:"description"`
}

type soaPriorAuthority struct {
	Type       string           `json:"type"`
	Summary    string           `json:"summary"`
	Amount     *decimal.Decimal `json:"amount"`
	Attributes []soaAttribute   `json:"attributes"`
}

type soaAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type soaAward struct {
	AwardID     string            `json:"award_id"`
	AwardType   string            `json:"award_type"`
	Description string            `json:"description"`
	Amount      *decimal.Decimal  `json:"amount"`
	Details     map[string]string `json:"details"`
}

func (c soaCase) record() *models.CaseRecord {
	return &models.CaseRecord{
		CaseReference:      c.CaseReference,
		ApplicationDetails: c.Application.record(),
		Proceedings:        mapSlice(c.Proceedings, soaProceeding.record),
		PriorAuthorities:   mapSlice(c.PriorAuthorities, soaPriorAuthority.record),
		Awards:             mapSlice(c.Awards, soaAward.record),
	}
}

func (a *soaApplication) record() *models.ApplicationDetails {
	if a == nil {
		return nil
	}
	out := &models.ApplicationDetails{
		Provider: models.ProviderIdentity{
			ProviderFirmID:      a.Provider.FirmID,
			ProviderOfficeID:    a.Provider.OfficeID,
			FeeEarnerContactID:  a.Provider.FeeEarnerID,
			SupervisorContactID: a.Provider.SupervisorID,
			ProviderCaseRef:     a.Provider.CaseRef,
		},
		CertificateType:          a.CertificateType,
		ApplicationAmendmentType: a.ApplicationType,
		DevolvedPowersDate:       a.DevolvedPowersDate.ptr(),
		MeansAssessments:         mapSlice(a.Assessments.Means, soaAssessment.record),
		MeritsAssessments:        mapSlice(a.Assessments.Merits, soaAssessment.record),
	}
	if col := a.CategoryOfLaw; col != nil {
		out.CategoryOfLaw = &models.CategoryOfLaw{
			Code:            col.Code,
			Description:     col.Description,
			TotalPaidToDate: col.TotalPaidToDate,
			CostLimitations: mapSlice(col.CostLimitations, func(cl soaCostLimitation) models.CostLimitation {
				return models.CostLimitation{
					BillingProviderID: cl.BillingProviderID,
					PaidToDate:        cl.PaidToDate,
					Amount:            cl.Amount,
				}
			}),
		}
	}
	return out
}

func (a soaAssessment) record() *models.AssessmentResult {
	return &models.AssessmentResult{AssessmentID: a.AssessmentID, Date: a.Date.ptr(), Result: a.Result}
}

func (p soaProceeding) record() *models.ProceedingRecord {
	out := &models.ProceedingRecord{
		ProceedingID:      p.ProceedingID,
		LeadProceeding:    p.Lead,
		ProceedingType:    p.ProceedingType,
		Status:            p.Status,
		MatterType:        p.MatterType,
		LevelOfService:    p.LevelOfService,
		ClientInvolvement: p.ClientInvolvement,
		ScopeLimitations: mapSlice(p.ScopeLimitations, func(sl soaScopeLimitation) *models.ScopeLimitation {
			return &models.ScopeLimitation{Code: sl.Code, Wording: sl.Wording}
		}),
	}
	if o := p.Outcome; o != nil {
		out.Outcome = &models.OutcomeRecord{
			CourtCode:    o.CourtCode,
			ResultCode:   o.ResultCode,
			StageEndCode: o.StageEndCode,
			OutcomeDate:  o.OutcomeDate.ptr(),
			Description:  o.Description,
		}
	}
	return out
}

func (pa soaPriorAuthority) record() *models.PriorAuthorityRecord {
	return &models.PriorAuthorityRecord{
		Type:    pa.Type,
		Summary: pa.Summary,
		Amount:  pa.Amount,
		Attributes: mapSlice(pa.Attributes, func(a soaAttribute) models.PriorAuthorityAttribute {
			return models.PriorAuthorityAttribute{Name: a.Name, Value: a.Value}
		}),
	}
}

func (a soaAward) record() *models.AwardRecord {
	return &models.AwardRecord{
		AwardID:     a.AwardID,
		AwardType:   a.AwardType,
		Description: a.Description,
		Amount:      a.Amount,
		Details:     a.Details,
	}
}
