// Package httpapi talks to the reference-data REST API. Client implements the
// mapping reference-data port over HTTP; Handler serves any port with the same
// routes.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"casebridge/internal/refdata/models"
	"casebridge/pkg/platform/circuit"
	"casebridge/pkg/platform/sentinel"
	"casebridge/pkg/requestcontext"
)

const tracerName = "casebridge/internal/refdata/httpapi"

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Client is the HTTP reference-data backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(cl *Client) {
		cl.tracer = tracer
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("reference data base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse reference data base URL: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker:    circuit.New("refdata-api"),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// getJSON fetches path and decodes the body into dst. A 404 is reported as
// sentinel.ErrNotFound. Transport failures and 5xx answers count against the
// breaker; while it is open calls fail fast with sentinel.ErrUnavailable.
func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, dst any) (err error) {
	ctx, span := c.tracer.Start(ctx, "refdata.http."+operation,
		trace.WithAttributes(attribute.String("http.route", path)))
	defer func() {
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !c.breaker.Allow() {
		return fmt.Errorf("%s: circuit %s open: %w", operation, c.breaker.Name(), sentinel.ErrUnavailable)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}
		c.recordFailure(ctx, operation)
		return fmt.Errorf("%s: do request: %w", operation, errors.Join(err, sentinel.ErrUnavailable))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.DebugContext(ctx, "reference data response", "operation", operation, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.breaker.RecordSuccess()
		return fmt.Errorf("%s: %w", operation, sentinel.ErrNotFound)
	case resp.StatusCode >= 500:
		c.recordFailure(ctx, operation)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %w", &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}, sentinel.ErrUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.breaker.RecordSuccess()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.breaker.RecordSuccess()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, operation string) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "reference data circuit opened", "operation", operation, "breaker", c.breaker.Name())
	}
}

// listPage is the envelope of every list endpoint.
type listPage[T any] struct {
	Content []T `json:"content"`
}

// getList treats a 404 on a list endpoint as no match.
func getList[T any](ctx context.Context, c *Client, operation, path string, query url.Values) ([]T, error) {
	var page listPage[T]
	err := c.getJSON(ctx, operation, path, query, &page)
	if errors.Is(err, sentinel.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return page.Content, nil
}

func (c *Client) CommonValues(ctx context.Context, listCode, code string) (*models.CommonValues, error) {
	var page models.CommonValues
	err := c.getJSON(ctx, "common_values", "/common-values", url.Values{"type": {listCode}, "code": {code}}, &page)
	if err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []models.LookupValue{}
	}
	return &page, nil
}

func (c *Client) ProceedingType(ctx context.Context, code string) (*models.ProceedingTypeDetail, error) {
	var p models.ProceedingTypeDetail
	if err := c.getJSON(ctx, "proceeding_type", "/proceedings/"+url.PathEscape(code), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Provider(ctx context.Context, firmID int) (*models.ProviderDetail, error) {
	var p models.ProviderDetail
	if err := c.getJSON(ctx, "provider", "/providers/"+strconv.Itoa(firmID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ScopeLimitationDetails(ctx context.Context, criteria models.ScopeLimitationCriteria) ([]models.ScopeLimitationDetail, error) {
	return getList[models.ScopeLimitationDetail](ctx, c, "scope_limitations", "/scope-limitations", criteriaQuery(criteria))
}

func (c *Client) AwardTypes(ctx context.Context) ([]models.AwardType, error) {
	return getList[models.AwardType](ctx, c, "award_types", "/award-types", nil)
}

func (c *Client) PriorAuthorityType(ctx context.Context, code string) (*models.PriorAuthorityTypeDetail, error) {
	var p models.PriorAuthorityTypeDetail
	if err := c.getJSON(ctx, "prior_authority_type", "/prior-authority-types/"+url.PathEscape(code), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Courts(ctx context.Context, code string) ([]models.LookupValue, error) {
	return getList[models.LookupValue](ctx, c, "courts", "/courts", url.Values{"code": {code}})
}

func (c *Client) OutcomeResults(ctx context.Context, proceedingCode, resultCode string) ([]models.LookupValue, error) {
	return getList[models.LookupValue](ctx, c, "outcome_results", "/outcome-results",
		url.Values{"proceeding_code": {proceedingCode}, "code": {resultCode}})
}

func (c *Client) StageEnds(ctx context.Context, proceedingCode, stageEndCode string) ([]models.LookupValue, error) {
	return getList[models.LookupValue](ctx, c, "stage_ends", "/stage-ends",
		url.Values{"proceeding_code": {proceedingCode}, "code": {stageEndCode}})
}

func criteriaQuery(c models.ScopeLimitationCriteria) url.Values {
	q := url.Values{
		"category_of_law":  {c.CategoryOfLaw},
		"matter_type":      {c.MatterType},
		"proceeding_code":  {c.ProceedingCode},
		"level_of_service": {c.LevelOfService},
		"scope_limitation": {c.ScopeLimitation},
	}
	if c.Emergency != nil {
		q.Set("emergency", strconv.FormatBool(*c.Emergency))
	}
	return q
}

// parseCriteria is the inverse of criteriaQuery.
func parseCriteria(q url.Values) (models.ScopeLimitationCriteria, error) {
	c := models.ScopeLimitationCriteria{
		CategoryOfLaw:   q.Get("category_of_law"),
		MatterType:      q.Get("matter_type"),
		ProceedingCode:  q.Get("proceeding_code"),
		LevelOfService:  q.Get("level_of_service"),
		ScopeLimitation: q.Get("scope_limitation"),
	}
	if raw := q.Get("emergency"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c, fmt.Errorf("invalid emergency flag %q", raw)
		}
		c.Emergency = &v
	}
	return c, nil
}
