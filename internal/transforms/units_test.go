// ABOUTME: Tests for unit conversions and numeric CSV parsing.
package transforms

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestKgToLbs(t *testing.T) {
	if got := KgToLbs(71.4); !almostEqual(got, 157.409868) {
		t.Errorf("KgToLbs(71.4) = %f", got)
	}
	if got := KgToLbs(0); got != 0 {
		t.Errorf("KgToLbs(0) = %f", got)
	}
}

func TestMetersToMiles(t *testing.T) {
	if got := MetersToMiles(5000); !almostEqual(got, 3.106855) {
		t.Errorf("MetersToMiles(5000) = %f", got)
	}
}

func TestMpsToPace(t *testing.T) {
	// 3.0 m/s is roughly 8:56/mile.
	pace, ok := MpsToPaceMinPerMile(3.0)
	if !ok || !almostEqual(pace, 8.9408) {
		t.Errorf("MpsToPaceMinPerMile(3.0) = %f, %v", pace, ok)
	}
	if _, ok := MpsToPaceMinPerMile(0); ok {
		t.Error("expected no pace for zero speed")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"157.4", 157.4, true},
		{"1,234", 1234, true},
		{"2,105.4", 2105.4, true},
		{"--", 0, false},
		{"", 0, false},
		{"  42  ", 42, true},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || (ok && !almostEqual(got, tt.want)) {
			t.Errorf("ParseNumber(%q) = %f, %v; want %f, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePace(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"9:30", 9.5, true},
		{"10:15", 10.25, true},
		{"--", 0, false},
		{"", 0, false},
		{"9", 0, false},
		{"1:02:03", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePace(tt.in)
		if ok != tt.ok || (ok && !almostEqual(got, tt.want)) {
			t.Errorf("ParsePace(%q) = %f, %v; want %f, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1:30:00", 5400, true},
		{"45:30", 2730, true},
		{"30", 30, true},
		{"0:35:05.7", 2105.7, true},
		{"--", 0, false},
		{"", 0, false},
		{"x:30", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDuration(tt.in)
		if ok != tt.ok || (ok && !almostEqual(got, tt.want)) {
			t.Errorf("ParseDuration(%q) = %f, %v; want %f, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
