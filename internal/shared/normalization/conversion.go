package normalization

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AsString trims and returns value when it is a string.
func AsString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// OptionalString returns nil unless value is a non-blank string.
func OptionalString(value any) *string {
	s := AsString(value)
	if s == "" {
		return nil
	}
	return &s
}

// AsIdentifier renders string and numeric identifiers the same way.
func AsIdentifier(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

// OptionalFloat64 coerces numbers and numeric strings, reporting absence with nil.
func OptionalFloat64(value any) *float64 {
	var parsed float64
	switch typed := value.(type) {
	case float64:
		parsed = typed
	case float32:
		parsed = float64(typed)
	case int:
		parsed = float64(typed)
	case int32:
		parsed = float64(typed)
	case int64:
		parsed = float64(typed)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return nil
		}
		parsed = f
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		parsed = f
	default:
		return nil
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

// OptionalInt truncates any value accepted by OptionalFloat64.
func OptionalInt(value any) *int {
	f := OptionalFloat64(value)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// AsInterfaceSlice normalizes collection types into []any; anything else yields nil.
func AsInterfaceSlice(value any) []any {
	switch typed := value.(type) {
	case []any:
		return typed
	case []map[string]any:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, entry)
		}
		return items
	default:
		return nil
	}
}

// AsMap returns value when it is a JSON object.
func AsMap(value any) map[string]any {
	if typed, ok := value.(map[string]any); ok {
		return typed
	}
	return nil
}

// MapFromPayload unwraps {"data": {...}} envelopes into a plain map.
func MapFromPayload(value any) map[string]any {
	typed := AsMap(value)
	if typed == nil {
		return nil
	}
	if data := AsMap(typed["data"]); data != nil {
		return data
	}
	return typed
}

// RawJSON re-encodes a decoded value so it can travel untouched in a typed model.
// Absent values stay nil.
func RawJSON(value any) json.RawMessage {
	if value == nil {
		return nil
	}
	blob, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return blob
}
