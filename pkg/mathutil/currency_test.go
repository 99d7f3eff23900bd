package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "Round up", input: 1.006, expected: 1.01},
		{name: "Round down", input: 1.004, expected: 1.0},
		{name: "Already two decimals", input: 123.45, expected: 123.45},
		{name: "Negative value", input: -1.006, expected: -1.01},
		{name: "Zero", input: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Round(tt.input); math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{name: "Exactly zero", input: 0, expected: true},
		{name: "Within tolerance", input: 0.009, expected: true},
		{name: "Negative within tolerance", input: -0.009, expected: true},
		{name: "Above tolerance", input: 0.011, expected: false},
		{name: "Clearly non-zero", input: 1.0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100.0, 100.005, 0.01) {
		t.Error("WithinTolerance(100.0, 100.005, 0.01) = false, expected true")
	}
	if WithinTolerance(100.0, 100.02, 0.01) {
		t.Error("WithinTolerance(100.0, 100.02, 0.01) = true, expected false")
	}
}

func TestMinMax(t *testing.T) {
	if result := Min(3.5, 2.5); result != 2.5 {
		t.Errorf("Min(3.5, 2.5) = %v, expected 2.5", result)
	}
	if result := Max(3.5, 2.5); result != 3.5 {
		t.Errorf("Max(3.5, 2.5) = %v, expected 3.5", result)
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{name: "Half", value: 50, total: 100, expected: 50},
		{name: "Over one hundred percent", value: 150, total: 100, expected: 150},
		{name: "Zero total", value: 50, total: 0, expected: 0},
		{name: "Fractional", value: 1, total: 3, expected: 33.333333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := CalculatePercentage(tt.value, tt.total); math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculatePercentage(%v, %v) = %v, expected %v", tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestMeanAndVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if result := Mean(values); math.Abs(result-5) > 1e-9 {
		t.Errorf("Mean() = %v, expected 5", result)
	}
	if result := Variance(values); math.Abs(result-4) > 1e-9 {
		t.Errorf("Variance() = %v, expected 4", result)
	}

	if result := Mean(nil); result != 0 {
		t.Errorf("Mean(nil) = %v, expected 0", result)
	}
	if result := Variance(nil); result != 0 {
		t.Errorf("Variance(nil) = %v, expected 0", result)
	}
	if result := Variance([]float64{42}); result != 0 {
		t.Errorf("Variance of a single value = %v, expected 0", result)
	}
}
