package domain

import (
	"encoding/json"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("12"), "12"},
		{true, "true"},
		{7, "7"},
		{2.5, "2.5"},
	}

	for _, tt := range tests {
		got, err := String(tt.input)
		if err != nil {
			t.Errorf("String(%v) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("String(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, err := String([]int{1}); err == nil {
		t.Error("expected error converting slice to string")
	}
}

func TestInt64(t *testing.T) {
	tests := []struct {
		input   any
		want    int64
		wantErr bool
	}{
		{nil, 0, false},
		{json.Number("30"), 30, false},
		{float64(4), 4, false},
		{float64(4.2), 0, true},
		{"15", 15, false},
		{"", 0, false},
		{"abc", 0, true},
		{int32(9), 9, false},
	}

	for _, tt := range tests {
		got, err := Int64(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Int64(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Int64(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFloat64AndBool(t *testing.T) {
	f, err := Float64(json.Number("1.25"))
	if err != nil || f != 1.25 {
		t.Errorf("Float64(1.25) = %v, %v", f, err)
	}
	f, err = Float64(3)
	if err != nil || f != 3 {
		t.Errorf("Float64(3) = %v, %v", f, err)
	}

	b, err := Bool("true")
	if err != nil || !b {
		t.Errorf("Bool(\"true\") = %v, %v", b, err)
	}
	if _, err := Bool(1); err == nil {
		t.Error("expected error converting int to bool")
	}
}
