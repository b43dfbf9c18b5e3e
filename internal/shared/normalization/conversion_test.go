package normalization

import (
	"encoding/json"
	"testing"
)

func TestOptionalFloat64(t *testing.T) {
	if OptionalFloat64(nil) != nil {
		t.Fatal("nil should be absent")
	}
	if OptionalFloat64("  ") != nil {
		t.Fatal("blank string should be absent")
	}
	if OptionalFloat64("abc") != nil {
		t.Fatal("unparsable string should be absent")
	}
	if OptionalFloat64([]any{1}) != nil {
		t.Fatal("slice should be absent")
	}
	if got := OptionalFloat64(json.Number("12.5")); got == nil || *got != 12.5 {
		t.Fatalf("json.Number not coerced: %v", got)
	}
	if got := OptionalFloat64(" 3 "); got == nil || *got != 3 {
		t.Fatalf("numeric string not coerced: %v", got)
	}
	if got := OptionalFloat64(0.0); got == nil || *got != 0 {
		t.Fatal("explicit zero must be present")
	}
}

func TestOptionalIntTruncates(t *testing.T) {
	cases := map[string]struct {
		in   any
		want *int
	}{
		"float":  {in: 4.9, want: intValue(4)},
		"number": {in: json.Number("7"), want: intValue(7)},
		"string": {in: "5", want: intValue(5)},
		"bool":   {in: true},
		"nil":    {in: nil},
	}
	for name, tc := range cases {
		got := OptionalInt(tc.in)
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Fatalf("%s: OptionalInt(%#v) = %v, want %v", name, tc.in, got, tc.want)
		}
	}
}

func intValue(v int) *int { return &v }

func TestAsIdentifier(t *testing.T) {
	if got := AsIdentifier(" u1 "); got != "u1" {
		t.Fatalf("unexpected id: %q", got)
	}
	if got := AsIdentifier(json.Number("42")); got != "42" {
		t.Fatalf("unexpected numeric id: %q", got)
	}
	if got := AsIdentifier(float64(7)); got != "7" {
		t.Fatalf("unexpected float id: %q", got)
	}
	if got := AsIdentifier(map[string]any{}); got != "" {
		t.Fatalf("objects have no identifier, got %q", got)
	}
}

func TestMapFromPayloadUnwrapsEnvelope(t *testing.T) {
	inner := map[string]any{"id": "snap-1"}
	if got := MapFromPayload(map[string]any{"data": inner}); got["id"] != "snap-1" {
		t.Fatalf("envelope not unwrapped: %v", got)
	}
	plain := map[string]any{"data": "not-an-object", "id": "x"}
	if got := MapFromPayload(plain); got["id"] != "x" {
		t.Fatalf("plain payload altered: %v", got)
	}
	if MapFromPayload([]any{}) != nil {
		t.Fatal("arrays are not objects")
	}
}

func TestRawJSON(t *testing.T) {
	if RawJSON(nil) != nil {
		t.Fatal("absent value should stay nil")
	}
	if got := string(RawJSON(map[string]any{"a": 1.0})); got != `{"a":1}` {
		t.Fatalf("unexpected encoding: %s", got)
	}
}

func TestNormalizeSectorKindCases(t *testing.T) {
	cases := map[string]string{
		"":             "",
		" Internação ": SectorKindInternation,
		"internacao":   SectorKindInternation,
		"ASSISTENCIA":  SectorKindAssistance,
		"neutro":       SectorKindNeutral,
		"support":      SectorKindNeutral,
		"radar":        "",
	}
	for input, expected := range cases {
		if got := NormalizeSectorKind(input); got != expected {
			t.Fatalf("NormalizeSectorKind(%q) expected %q got %q", input, expected, got)
		}
	}
}
