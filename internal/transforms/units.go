// ABOUTME: Unit conversions for normalizing source data.
// ABOUTME: Everything converts TO imperial, the storage format.
package transforms

import (
	"strconv"
	"strings"
)

const (
	kgPerLb      = 2.20462
	milesPerKm   = 0.621371
	feetPerMeter = 3.28084
	inchesPerCm  = 0.393701
)

// KgToLbs converts kilograms to pounds.
func KgToLbs(kg float64) float64 { return kg * kgPerLb }

// GramsToLbs converts grams to pounds.
func GramsToLbs(g float64) float64 { return g * kgPerLb / 1000 }

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 { return km * milesPerKm }

// MetersToMiles converts meters to miles.
func MetersToMiles(m float64) float64 { return m * milesPerKm / 1000 }

// MetersToFeet converts meters to feet.
func MetersToFeet(m float64) float64 { return m * feetPerMeter }

// CmToInches converts centimeters to inches.
func CmToInches(cm float64) float64 { return cm * inchesPerCm }

// MpsToMph converts meters per second to miles per hour.
func MpsToMph(mps float64) float64 { return mps * 2.23694 }

// MpsToPaceMinPerMile converts a speed in meters per second to a running
// pace in decimal minutes per mile. Zero speed has no pace.
func MpsToPaceMinPerMile(mps float64) (float64, bool) {
	if mps <= 0 {
		return 0, false
	}
	return 26.8224 / mps, true
}

// ParseNumber parses a decimal number from CSV text, tolerating thousands
// separators and the "--" placeholder Garmin uses for absent values.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParsePace converts a pace string ("9:30", "10:15") to decimal minutes
// per mile. The input is assumed to already be min/mile.
func ParsePace(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return float64(minutes) + float64(seconds)/60.0, true
}

// ParseDuration converts a duration string to seconds. Supports HH:MM:SS,
// MM:SS, and bare seconds; the final component may carry a fraction.
func ParseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	last, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, false
	}
	switch len(parts) {
	case 1:
		return last, true
	case 2:
		m, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		return float64(m)*60 + last, true
	case 3:
		h, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, false
		}
		return float64(h)*3600 + float64(m)*60 + last, true
	}
	return 0, false
}
