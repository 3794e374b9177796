// Package casesource decodes case documents from the upstream case-management
// systems into models.CaseRecord. Two document variants are supported; both
// decode to the same record so the mapping engine never sees the difference.
package casesource

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"casebridge/internal/mapping/models"
	dErrors "casebridge/pkg/domain-errors"
)

// Format names an upstream case document variant.
type Format string

const (
	// FormatEBS is the flat camelCase document with amounts as strings.
	FormatEBS Format = "ebs"
	// FormatSOA is the nested snake_case document with numeric amounts.
	FormatSOA Format = "soa"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatEBS, FormatSOA:
		return f, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown case format %q", s))
	}
}

// Decode reads one case document of the given format.
func Decode(format Format, r io.Reader) (*models.CaseRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read case document")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "case document is empty")
	}

	switch format {
	case FormatEBS:
		var doc ebsCase
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid ebs case document")
		}
		return doc.record(), nil
	case FormatSOA:
		var doc soaDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid soa case document")
		}
		if doc.CaseDetails == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "soa case document has no case_details")
		}
		return doc.CaseDetails.record(), nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown case format %q", format))
	}
}

// date accepts "2006-01-02", RFC 3339, an empty string or null.
type date struct {
	t *time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.t = nil
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.t = &t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	return d.t
}

// mapSlice converts in element-wise, keeping nil apart from empty.
func mapSlice[T, U any](in []T, f func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
