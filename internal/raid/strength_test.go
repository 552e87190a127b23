package raid

import (
	"errors"
	"math"
	"testing"
)

func TestComputeStrengthGroundWeighting(t *testing.T) {
	tn := DefaultTuning()

	strength, err := ComputeStrength(Units{Soldiers: 1000, Tanks: 50}, tn)
	if err != nil {
		t.Fatalf("ComputeStrength returned error: %v", err)
	}

	// 1000 soldiers + 50 tanks * 40 = 3000
	if strength.Ground != 3000 {
		t.Errorf("Expected ground strength 3000, got %.0f", strength.Ground)
	}
	if strength.Air != 0 {
		t.Errorf("Expected air strength 0, got %.0f", strength.Air)
	}
	if strength.Naval != 0 {
		t.Errorf("Expected naval strength 0, got %.0f", strength.Naval)
	}
}

func TestComputeStrengthTotalMagnitude(t *testing.T) {
	tn := DefaultTuning()

	strength, err := ComputeStrength(Units{Soldiers: 300, Aircraft: 40, Ships: 3}, tn)
	if err != nil {
		t.Fatalf("ComputeStrength returned error: %v", err)
	}

	// sqrt(300^2 + (40*10)^2 + (3*100)^2)
	expected := math.Sqrt(300*300 + 400*400 + 300*300)
	if math.Abs(strength.Total-expected) > 1e-9 {
		t.Errorf("Expected total strength %.4f, got %.4f", expected, strength.Total)
	}
}

func TestComputeStrengthMonetaryValue(t *testing.T) {
	tn := DefaultTuning()

	strength, err := ComputeStrength(Units{Soldiers: 100, Tanks: 10, Aircraft: 5, Ships: 2}, tn)
	if err != nil {
		t.Fatalf("ComputeStrength returned error: %v", err)
	}

	// 100*5 + 10*60 + 5*4000 + 2*50000
	expected := 500.0 + 600 + 20000 + 100000
	if strength.MonetaryValue != expected {
		t.Errorf("Expected monetary value %.0f, got %.0f", expected, strength.MonetaryValue)
	}
}

func TestComputeStrengthZeroUnits(t *testing.T) {
	tn := DefaultTuning()

	strength, err := ComputeStrength(Units{}, tn)
	if err != nil {
		t.Fatalf("ComputeStrength returned error: %v", err)
	}

	if strength.Total != 0 || strength.MonetaryValue != 0 {
		t.Errorf("Expected zero strength for zero units, got total=%.0f value=%.0f",
			strength.Total, strength.MonetaryValue)
	}
}

func TestComputeStrengthRejectsNegativeUnits(t *testing.T) {
	tn := DefaultTuning()

	tests := []struct {
		name  string
		units Units
	}{
		{"negative soldiers", Units{Soldiers: -1}},
		{"negative tanks", Units{Tanks: -1}},
		{"negative aircraft", Units{Aircraft: -1}},
		{"negative ships", Units{Ships: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeStrength(tt.units, tn)
			if err == nil {
				t.Fatal("Expected error for negative unit count")
			}

			var invalidErr *InvalidInputError
			if !errors.As(err, &invalidErr) {
				t.Errorf("Expected InvalidInputError, got %T", err)
			}
		})
	}
}
