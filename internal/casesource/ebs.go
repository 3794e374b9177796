package casesource

import (
	"github.com/shopspring/decimal"

	"casebridge/internal/mapping/models"
)

type ebsCase struct {
	CaseReferenceNumber string              `json:"caseReferenceNumber"`
	ApplicationDetails  *ebsApplication     `json:"applicationDetails"`
	Proceedings         []ebsProceeding     `json:"proceedings"`
	PriorAuthorities    []ebsPriorAuthority `json:"priorAuthorities"`
	Awards              []ebsAward          `json:"awards"`
}

type ebsApplication struct {
	ProviderDetails          ebsProviderDetails `json:"providerDetails"`
	CertificateType          string             `json:"certificateType"`
	ApplicationAmendmentType string             `json:"applicationAmendmentType"`
	CategoryOfLaw            *ebsCategoryOfLaw  `json:"categoryOfLaw"`
	DevolvedPowersDate       *date              `json:"devolvedPowersDate"`
	MeansAssessments         []ebsAssessment    `json:"meansAssessments"`
	MeritsAssessments        []ebsAssessment    `json:"meritsAssessments"`
}

type ebsProviderDetails struct {
	ProviderFirmID      int    `json:"providerFirmId"`
	ProviderOfficeID    int    `json:"providerOfficeId"`
	FeeEarnerContactID  string `json:"feeEarnerContactId"`
	SupervisorContactID string `json:"supervisorContactId"`
	ProviderCaseRef     string `json:"providerCaseReference"`
}

type ebsCategoryOfLaw struct {
	ID              string              `json:"id"`
	DisplayValue    string              `json:"displayValue"`
	CostLimitations []ebsCostLimitation `json:"costLimitations"`
	TotalPaidToDate *decimal.Decimal    `json:"totalPaidToDate"`
}

type ebsCostLimitation struct {
	BillingProviderID string           `json:"billingProviderId"`
	PaidToDate        *decimal.Decimal `json:"paidToDate"`
	Amount            *decimal.Decimal `json:"amount"`
}

type ebsAssessment struct {
	ID     string `json:"id"`
	Date   *date  `json:"date"`
	Result string `json:"result"`
}

type ebsProceeding struct {
	ID                string               `json:"id"`
	LeadProceedingInd bool                 `json:"leadProceedingInd"`
	ProceedingType    string               `json:"proceedingType"`
	Status            string               `json:"status"`
	MatterType        string               `json:"matterType"`
	LevelOfService    string               `json:"levelOfService"`
	ClientInvolvement string               `json:"clientInvolvement"`
	ScopeLimitations  []ebsScopeLimitation `json:"scopeLimitations"`
	Outcome           *ebsOutcome          `json:"outcome"`
}

type ebsScopeLimitation struct {
	ScopeLimitation        string `json:"scopeLimitation"`
	ScopeLimitationWording string `json:"scopeLimitationWording"`
}

type ebsOutcome struct {
	CourtCode    string `json:"courtCode"`
	ResultCode   string `json:"resultCode"`
	StageEndCode string `json:"stageEndCode"`
	OutcomeDate  *date  `json:"outcomeDate"`
	Description  string `json:"description"`
}

type ebsPriorAuthority struct {
	Type            string           `json:"type"`
	Summary         string           `json:"summary"`
	AmountRequested *decimal.Decimal `json:"amountRequested"`
	Items           []ebsItem        `json:"items"`
}

type ebsItem struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

type ebsAward struct {
	AwardID     string            `json:"awardId"`
	AwardType   string            `json:"awardType"`
	Description string            `json:"description"`
	Amount      *decimal.Decimal  `json:"amount"`
	Details     map[string]string `json:"details"`
}

func (c ebsCase) record() *models.CaseRecord {
	return &models.CaseRecord{
		CaseReference:      c.CaseReferenceNumber,
		ApplicationDetails: c.ApplicationDetails.record(),
		Proceedings:        mapSlice(c.Proceedings, ebsProceeding.record),
		PriorAuthorities:   mapSlice(c.PriorAuthorities, ebsPriorAuthority.record),
		Awards:             mapSlice(c.Awards, ebsAward.record),
	}
}

func (a *ebsApplication) record() *models.ApplicationDetails {
	if a == nil {
		return nil
	}
	out := &models.ApplicationDetails{
		Provider: models.ProviderIdentity{
			ProviderFirmID:      a.ProviderDetails.ProviderFirmID,
			ProviderOfficeID:    a.ProviderDetails.ProviderOfficeID,
			FeeEarnerContactID:  a.ProviderDetails.FeeEarnerContactID,
			SupervisorContactID: a.ProviderDetails.SupervisorContactID,
			ProviderCaseRef:     a.ProviderDetails.ProviderCaseRef,
		},
		CertificateType:          a.CertificateType,
		ApplicationAmendmentType: a.ApplicationAmendmentType,
		DevolvedPowersDate:       a.DevolvedPowersDate.ptr(),
		MeansAssessments:         mapSlice(a.MeansAssessments, ebsAssessment.record),
		MeritsAssessments:        mapSlice(a.MeritsAssessments, ebsAssessment.record),
	}
	if col := a.CategoryOfLaw; col != nil {
		out.CategoryOfLaw = &models.CategoryOfLaw{
			Code:            col.ID,
			Description:     col.DisplayValue,
			TotalPaidToDate: col.TotalPaidToDate,
			CostLimitations: mapSlice(col.CostLimitations, func(cl ebsCostLimitation) models.CostLimitation {
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

func (a ebsAssessment) record() *models.AssessmentResult {
	return &models.AssessmentResult{AssessmentID: a.ID, Date: a.Date.ptr(), Result: a.Result}
}

func (p ebsProceeding) record() *models.ProceedingRecord {
	out := &models.ProceedingRecord{
		ProceedingID:      p.ID,
		LeadProceeding:    p.LeadProceedingInd,
		ProceedingType:    p.ProceedingType,
		Status:            p.Status,
		MatterType:        p.MatterType,
		LevelOfService:    p.LevelOfService,
		ClientInvolvement: p.ClientInvolvement,
		ScopeLimitations: mapSlice(p.ScopeLimitations, func(sl ebsScopeLimitation) *models.ScopeLimitation {
			return &models.ScopeLimitation{Code: sl.ScopeLimitation, Wording: sl.ScopeLimitationWording}
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

func (pa ebsPriorAuthority) record() *models.PriorAuthorityRecord {
	return &models.PriorAuthorityRecord{
		Type:    pa.Type,
		Summary: pa.Summary,
		Amount:  pa.AmountRequested,
		Attributes: mapSlice(pa.Items, func(i ebsItem) models.PriorAuthorityAttribute {
			return models.PriorAuthorityAttribute{Name: i.Code, Value: i.Value}
		}),
	}
}

func (a ebsAward) record() *models.AwardRecord {
	return &models.AwardRecord{
		AwardID:     a.AwardID,
		AwardType:   a.AwardType,
		Description: a.Description,
		Amount:      a.Amount,
		Details:     a.Details,
	}
}
