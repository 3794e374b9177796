package ports

import (
	"context"

	refmodels "casebridge/internal/refdata/models"
)

// ReferenceDataPort is the lookup boundary the mapping engine resolves coded
// values against. Implementations live in internal/refdata (memory, postgres,
// HTTP, cache decorator).
//
// Contract:
//   - single-item lookups return sentinel.ErrNotFound (optionally wrapped) when
//     the backend holds no row for the code
//   - list lookups return an empty slice on no match
//   - any other error is an infrastructure failure and aborts the build
type ReferenceDataPort interface {
	// CommonValues returns the common values of listCode matching code. A nil
	// page with a nil error means the backend returned nothing at all.
	CommonValues(ctx context.Context, listCode, code string) (*refmodels.CommonValues, error)

	ProceedingType(ctx context.Context, code string) (*refmodels.ProceedingTypeDetail, error)

	Provider(ctx context.Context, firmID int) (*refmodels.ProviderDetail, error)

	ScopeLimitationDetails(ctx context.Context, criteria refmodels.ScopeLimitationCriteria) ([]refmodels.ScopeLimitationDetail, error)

	// AwardTypes returns the whole award type table.
	AwardTypes(ctx context.Context) ([]refmodels.AwardType, error)

	PriorAuthorityType(ctx context.Context, code string) (*refmodels.PriorAuthorityTypeDetail, error)

	Courts(ctx context.Context, code string) ([]refmodels.LookupValue, error)

	OutcomeResults(ctx context.Context, proceedingCode, resultCode string) ([]refmodels.LookupValue, error)

	StageEnds(ctx context.Context, proceedingCode, stageEndCode string) ([]refmodels.LookupValue, error)
}
