// Package cache decorates a reference-data port with a read-through cache.
// Only hits are cached; misses and failures always reach the upstream port so
// newly published reference data is picked up immediately.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"casebridge/internal/mapping/ports"
	"casebridge/internal/refdata/models"
)

const keyPrefix = "refdata:"

// ReadThrough implements ports.ReferenceDataPort over another port.
type ReadThrough struct {
	next    ports.ReferenceDataPort
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*ReadThrough)

func WithLogger(logger *slog.Logger) Option {
	return func(c *ReadThrough) {
		c.logger = logger
	}
}

// New wraps next. A non-positive ttl disables caching and returns next as is.
func New(next ports.ReferenceDataPort, backend Backend, ttl time.Duration, opts ...Option) ports.ReferenceDataPort {
	if ttl <= 0 || backend == nil {
		return next
	}
	c := &ReadThrough{next: next, backend: backend, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a cache key of the form refdata:<kind>:<part>:<part>...
func Key(kind string, parts ...string) string {
	return keyPrefix + kind + ":" + strings.Join(parts, ":")
}

// readThrough serves key from the backend or loads it from upstream. Backend
// failures are logged and degrade to the upstream call.
func readThrough[T any](ctx context.Context, c *ReadThrough, key string, load func() (T, error), hit func(T) bool) (T, error) {
	if raw, ok, err := c.backend.Get(ctx, key); err != nil {
		c.warn(ctx, "reference data cache read failed", key, err)
	} else if ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		c.warn(ctx, "reference data cache entry undecodable", key, err)
	}

	v, err := load()
	if err != nil || !hit(v) {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.warn(ctx, "reference data cache encode failed", key, err)
		return v, nil
	}
	if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
		c.warn(ctx, "reference data cache write failed", key, err)
	}
	return v, nil
}

func (c *ReadThrough) warn(ctx context.Context, msg, key string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "key", key, "error", err)
	}
}

func notNil[T any](v *T) bool {
	return v != nil
}

func notEmpty[T any](v []T) bool {
	return len(v) > 0
}

func (c *ReadThrough) CommonValues(ctx context.Context, listCode, code string) (*models.CommonValues, error) {
	return readThrough(ctx, c, Key("common_values", listCode, code), func() (*models.CommonValues, error) {
		return c.next.CommonValues(ctx, listCode, code)
	}, func(v *models.CommonValues) bool {
		return v != nil && len(v.Content) > 0
	})
}

func (c *ReadThrough) ProceedingType(ctx context.Context, code string) (*models.ProceedingTypeDetail, error) {
	return readThrough(ctx, c, Key("proceeding_type", code), func() (*models.ProceedingTypeDetail, error) {
		return c.next.ProceedingType(ctx, code)
	}, notNil[models.ProceedingTypeDetail])
}

func (c *ReadThrough) Provider(ctx context.Context, firmID int) (*models.ProviderDetail, error) {
	return readThrough(ctx, c, Key("provider", strconv.Itoa(firmID)), func() (*models.ProviderDetail, error) {
		return c.next.Provider(ctx, firmID)
	}, notNil[models.ProviderDetail])
}

func (c *ReadThrough) ScopeLimitationDetails(ctx context.Context, criteria models.ScopeLimitationCriteria) ([]models.ScopeLimitationDetail, error) {
	emergency := "any"
	if criteria.Emergency != nil {
		emergency = strconv.FormatBool(*criteria.Emergency)
	}
	key := Key("scope_limitation", criteria.CategoryOfLaw, criteria.MatterType, criteria.ProceedingCode,
		criteria.LevelOfService, criteria.ScopeLimitation, emergency)
	return readThrough(ctx, c, key, func() ([]models.ScopeLimitationDetail, error) {
		return c.next.ScopeLimitationDetails(ctx, criteria)
	}, notEmpty[models.ScopeLimitationDetail])
}

func (c *ReadThrough) AwardTypes(ctx context.Context) ([]models.AwardType, error) {
	return readThrough(ctx, c, Key("award_types", "all"), func() ([]models.AwardType, error) {
		return c.next.AwardTypes(ctx)
	}, notEmpty[models.AwardType])
}

func (c *ReadThrough) PriorAuthorityType(ctx context.Context, code string) (*models.PriorAuthorityTypeDetail, error) {
	return readThrough(ctx, c, Key("prior_authority_type", code), func() (*models.PriorAuthorityTypeDetail, error) {
		return c.next.PriorAuthorityType(ctx, code)
	}, notNil[models.PriorAuthorityTypeDetail])
}

func (c *ReadThrough) Courts(ctx context.Context, code string) ([]models.LookupValue, error) {
	return readThrough(ctx, c, Key("courts", code), func() ([]models.LookupValue, error) {
		return c.next.Courts(ctx, code)
	}, notEmpty[models.LookupValue])
}

func (c *ReadThrough) OutcomeResults(ctx context.Context, proceedingCode, resultCode string) ([]models.LookupValue, error) {
	return readThrough(ctx, c, Key("outcome_results", proceedingCode, resultCode), func() ([]models.LookupValue, error) {
		return c.next.OutcomeResults(ctx, proceedingCode, resultCode)
	}, notEmpty[models.LookupValue])
}

func (c *ReadThrough) StageEnds(ctx context.Context, proceedingCode, stageEndCode string) ([]models.LookupValue, error) {
	return readThrough(ctx, c, Key("stage_ends", proceedingCode, stageEndCode), func() ([]models.LookupValue, error) {
		return c.next.StageEnds(ctx, proceedingCode, stageEndCode)
	}, notEmpty[models.LookupValue])
}

var _ ports.ReferenceDataPort = (*ReadThrough)(nil)
