package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestIDOf(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  ID
		ok    bool
	}{
		{"string", "abc", "abc", true},
		{"empty string", "", "", false},
		{"nil", nil, "", false},
		{"int", 42, "42", true},
		{"int64", int64(-7), "-7", true},
		{"uint8", uint8(3), "3", true},
		{"integral float", float64(12), "12", true},
		{"fractional float", 1.5, "", false},
		{"json number", json.Number("99"), "99", true},
		{"json fraction", json.Number("9.5"), "", false},
		{"json integral decimal", json.Number("1.0"), "1", true},
		{"json exponent", json.Number("1e+19"), "10000000000000000000", true},
		{"json above max int64", json.Number("9223372036854775808"), "9223372036854775808", true},
		{"json max uint64", json.Number("18446744073709551615"), "18446744073709551615", true},
		{"json garbage", json.Number("12abc"), "", false},
		{"uint64 above max int64", uint64(1 << 63), "9223372036854775808", true},
		{"float at 2^63", float64(1 << 63), "9223372036854775808", true},
		{"float 1e19", 1e19, "10000000000000000000", true},
		{"float 2e19", 2e19, "20000000000000000000", true},
		{"negative float below int64", -1e19, "-10000000000000000000", true},
		{"min int64 float", float64(math.MinInt64), "-9223372036854775808", true},
		{"nan", math.NaN(), "", false},
		{"infinity", math.Inf(1), "", false},
		{"id", ID("x"), "x", true},
		{"bool", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IDOf(tt.input)
			if ok != tt.ok {
				t.Fatalf("IDOf(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("IDOf(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIDOfTreatsNumberAndStringAlike(t *testing.T) {
	a, _ := IDOf(1)
	b, _ := IDOf("1")
	if a != b {
		t.Errorf("expected 1 and \"1\" to normalize to the same ID, got %q and %q", a, b)
	}
}

func TestMustID(t *testing.T) {
	if _, err := MustID(nil); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("expected ErrInvalidIdentifier, got %v", err)
	}
	id, err := MustID("p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "p1" {
		t.Errorf("expected p1, got %s", id)
	}
}

// JSON encoding and UseNumber decoding must not change an identifier
func TestIDOfSurvivesJSONRoundTrip(t *testing.T) {
	values := []any{uint64(1 << 63), uint64(math.MaxUint64), 1e19, 2e19, float64(1), int64(math.MinInt64), 12}

	for _, v := range values {
		want, ok := IDOf(v)
		if !ok {
			t.Fatalf("IDOf(%v) rejected", v)
		}

		data, err := json.Marshal(map[string]any{"id": v})
		if err != nil {
			t.Fatalf("marshal %v: %v", v, err)
		}
		var rec Record
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&rec); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}

		got, ok := IDOf(rec["id"])
		if !ok || got != want {
			t.Errorf("%v: wrote %q, read back %q (ok=%v) from %s", v, want, got, ok, data)
		}
	}
}

func TestIDOfKeepsLargeFloatsDistinct(t *testing.T) {
	a, _ := IDOf(1e19)
	b, _ := IDOf(2e19)
	if a == b {
		t.Errorf("expected distinct IDs, both are %q", a)
	}
	u, _ := IDOf(uint64(10000000000000000000))
	if a != u {
		t.Errorf("expected float 1e19 and uint64 1e19 to match, got %q and %q", a, u)
	}
}
