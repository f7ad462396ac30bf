// Package events reads Brewva orchestrator event logs.
// Each log file holds one session as line-delimited JSON records; the
// reader is deliberately permissive because upstream producers drift.
package events

import "encoding/json"

// Event types emitted by the orchestrator that the observer cares about.
// Anything else is carried through unparsed and ignored downstream.
const (
	TypeContextInjected     = "context_injected"
	TypeInjectionDropped    = "context_injection_dropped"
	TypeFloorUnmet          = "context_arena_floor_unmet_unrecoverable"
	TypeZoneAdapted         = "context_arena_zone_adapted"
	TypeVerificationOutcome = "verification_outcome_recorded"
	TypeCostUpdate          = "cost_update"
	TypeSkillActivated      = "skill_activated"
)

// DropReasonDuplicate marks injection drops caused by duplicate content.
// These are noise, not real drops, and are never counted.
const DropReasonDuplicate = "duplicate_content"

// Event is one orchestrator log record. Fields that fail to parse degrade
// to their zero values instead of invalidating the record: a record with a
// string timestamp still attributes, it just never counts toward a window.
type Event struct {
	// Timestamp is Unix milliseconds. Only meaningful when HasTime is set.
	Timestamp int64
	// HasTime reports whether the record carried a numeric timestamp.
	HasTime bool
	// Type is the event type string, or "" when absent or not a string.
	Type string
	// Payload is the record's payload object. Nil when the payload was
	// absent or not a JSON object (bare numbers and arrays are tolerated
	// upstream, so they must be tolerated here).
	Payload map[string]any
}

// parseLine decodes one log line. It returns false for lines that are not
// valid JSON objects; those lines are skipped by the reader.
func parseLine(line []byte) (Event, bool) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, false
	}

	var ev Event
	if ts, ok := raw["timestamp"].(float64); ok {
		ev.Timestamp = int64(ts)
		ev.HasTime = true
	}
	if t, ok := raw["type"].(string); ok {
		ev.Type = t
	}
	if p, ok := raw["payload"].(map[string]any); ok {
		ev.Payload = p
	}
	return ev, true
}

// InWindow reports whether the event carries a timestamp at or after
// cutoffMS. Events without a numeric timestamp are never in a window.
func (e Event) InWindow(cutoffMS int64) bool {
	return e.HasTime && e.Timestamp >= cutoffMS
}

// Number returns a numeric payload field, or 0 when the field is missing
// or not a number.
func (e Event) Number(key string) float64 {
	switch v := e.Payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// String returns a string payload field, or "" when the field is missing
// or not a string.
func (e Event) String(key string) string {
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}
