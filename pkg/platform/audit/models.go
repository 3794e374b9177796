package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance, e.g. a case
	// being prepared for amendment from source data.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// Subject is the case reference the event is about.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	Duration  time.Duration
}

type AuditEvent string

const (
	EventMappingContextBuilt  AuditEvent = "mapping_context_built"
	EventMappingContextFailed AuditEvent = "mapping_context_failed"
	EventReferenceDataLoaded  AuditEvent = "reference_data_loaded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventMappingContextBuilt:  CategoryCompliance,
	EventMappingContextFailed: CategoryCompliance,
	EventReferenceDataLoaded:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
