package raid

import (
	"errors"
	"math/rand"
	"testing"

	"pnw_raid_finder/internal/app"
)

func TestEstimateValueCashAndStockpile(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.Money = 1_000_000
	nation.Steel = 500
	nation.Cities = nil // isolate cash + stockpile from production
	nation.Soldiers, nation.Tanks, nation.Aircraft, nation.Ships = 0, 0, 0, 0

	prices := map[string]float64{"steel": 4000}

	estimate, err := EstimateValue(&nation, prices, EstimateOptions{}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	expectedCash := 1_000_000 * tn.Loot.LootRate
	if estimate.Cash != expectedCash {
		t.Errorf("Expected cash value %.0f, got %.0f", expectedCash, estimate.Cash)
	}

	expectedStockpile := 500 * 4000 * tn.Loot.LootRate
	if estimate.Stockpile != expectedStockpile {
		t.Errorf("Expected stockpile value %.0f, got %.0f", expectedStockpile, estimate.Stockpile)
	}
}

func TestEstimateValueMissingPriceFallsBack(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.Money = 0
	nation.Steel = 100
	nation.Soldiers, nation.Tanks, nation.Aircraft, nation.Ships = 0, 0, 0, 0
	nation.Cities = []app.City{{ID: 1, Infrastructure: 0}}
	nation.NumCities = 1

	// Empty price feed: the default table must be used, never zero
	estimate, err := EstimateValue(&nation, map[string]float64{}, EstimateOptions{}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	expected := 100 * DefaultPrices["steel"] * tn.Loot.LootRate
	if estimate.Stockpile != expected {
		t.Errorf("Expected fallback stockpile value %.0f, got %.0f", expected, estimate.Stockpile)
	}
}

func TestEstimateValueZeroCities(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.NumCities = 0
	nation.Cities = nil
	nation.Steel = 10_000
	nation.Money = 0
	nation.Soldiers = 1000

	estimate, err := EstimateValue(&nation, nil, EstimateOptions{}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	if estimate.Stockpile != 0 {
		t.Errorf("Expected zero stockpile value with zero cities, got %.0f", estimate.Stockpile)
	}
	if estimate.Production != 0 {
		t.Errorf("Expected zero production value with zero cities, got %.0f", estimate.Production)
	}
	if estimate.Military <= 0 {
		t.Error("Military value should still be computed when units > 0")
	}
}

func TestEstimateValueMilitaryLiquidation(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.Money = 0
	nation.Cities = nil
	nation.NumCities = 0
	nation.Soldiers, nation.Tanks, nation.Aircraft, nation.Ships = 0, 0, 10, 0

	estimate, err := EstimateValue(&nation, nil, EstimateOptions{}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	// 10 aircraft * 4000 * 0.25
	expected := 10 * tn.Strength.AircraftCost * tn.Loot.MilitaryLiquidationRate
	if estimate.Military != expected {
		t.Errorf("Expected military liquidation value %.0f, got %.0f", expected, estimate.Military)
	}
}

func TestEstimateValueAccessibilityRatio(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.Soldiers = 1000 // defender ground 1000 + 50*40 = 3000

	tests := []struct {
		name             string
		attacker         Units
		expectedFraction float64
	}{
		{"overwhelming attacker", Units{Soldiers: 10000, Tanks: 500}, 0.95}, // ratio 10
		{"double strength", Units{Soldiers: 6000}, 0.85},                    // ratio 2
		{"even match", Units{Soldiers: 3000}, 0.60},                         // ratio 1
		{"outgunned attacker", Units{Soldiers: 100}, 0.25},                  // below every step
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attacker := tt.attacker
			estimate, err := EstimateValue(&nation, nil, EstimateOptions{AttackerUnits: &attacker}, tn)
			if err != nil {
				t.Fatalf("EstimateValue returned error: %v", err)
			}
			if estimate.AccessibilityFraction != tt.expectedFraction {
				t.Errorf("Expected accessibility %.2f, got %.2f", tt.expectedFraction, estimate.AccessibilityFraction)
			}
		})
	}
}

func TestEstimateValueBlockadePenalty(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.Soldiers = 1000
	nation.Ships = 20

	// Attacker matches ground strength exactly but has no navy
	attacker := Units{Soldiers: 3000}

	estimate, err := EstimateValue(&nation, nil, EstimateOptions{AttackerUnits: &attacker}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	expected := 0.60 * tn.Loot.NavalBlockadePenalty
	if estimate.AccessibilityFraction != expected {
		t.Errorf("Expected blockade-penalized accessibility %.3f, got %.3f", expected, estimate.AccessibilityFraction)
	}
}

func TestEstimateValueInactivityBonusAfterAccessibility(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	attacker := Units{Soldiers: 6000} // ratio 2 over defender ground 3000

	active := ActivityAssessment{IsActive: true, Level: Active, Score: 70}
	veryInactive := ActivityAssessment{IsActive: false, Level: VeryInactive, Score: 0}

	baseline, err := EstimateValue(&nation, nil, EstimateOptions{AttackerUnits: &attacker, Activity: &active}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}
	boosted, err := EstimateValue(&nation, nil, EstimateOptions{AttackerUnits: &attacker, Activity: &veryInactive}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	if baseline.ActivityMultiplier != 1.0 {
		t.Errorf("Active target should get multiplier 1.0, got %.2f", baseline.ActivityMultiplier)
	}
	if boosted.ActivityMultiplier != tn.Loot.VeryInactiveBonus {
		t.Errorf("Expected multiplier %.2f, got %.2f", tn.Loot.VeryInactiveBonus, boosted.ActivityMultiplier)
	}

	// The bonus scales both totals, once, after the accessibility discount
	if boosted.Total != baseline.Total*tn.Loot.VeryInactiveBonus {
		t.Errorf("Expected boosted total %.2f, got %.2f", baseline.Total*tn.Loot.VeryInactiveBonus, boosted.Total)
	}
	if boosted.Accessible != baseline.Accessible*tn.Loot.VeryInactiveBonus {
		t.Errorf("Expected boosted accessible %.2f, got %.2f", baseline.Accessible*tn.Loot.VeryInactiveBonus, boosted.Accessible)
	}
	if boosted.AccessibilityFraction != baseline.AccessibilityFraction {
		t.Error("Inactivity bonus must not alter the accessibility fraction")
	}
}

func TestEstimateValueDeterministicWithoutJitter(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	attacker := testAttacker().Units

	first, err := EstimateValue(&nation, nil, EstimateOptions{AttackerUnits: &attacker}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}
	second, err := EstimateValue(&nation, nil, EstimateOptions{AttackerUnits: &attacker}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	if first != second {
		t.Errorf("Identical inputs must yield identical estimates: %+v vs %+v", first, second)
	}
}

func TestEstimateValueJitterIsOptIn(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)

	plain, err := EstimateValue(&nation, nil, EstimateOptions{}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	jittered, err := EstimateValue(&nation, nil, EstimateOptions{Jitter: rand.New(rand.NewSource(7))}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}

	// Jittered totals stay within the documented band around the plain value
	lower := plain.Total * (1 - tn.Loot.JitterFraction)
	upper := plain.Total * (1 + tn.Loot.JitterFraction)
	if jittered.Total < lower || jittered.Total > upper {
		t.Errorf("Jittered total %.2f outside band [%.2f, %.2f]", jittered.Total, lower, upper)
	}

	// A seeded source is still repeatable
	repeat, err := EstimateValue(&nation, nil, EstimateOptions{Jitter: rand.New(rand.NewSource(7))}, tn)
	if err != nil {
		t.Fatalf("EstimateValue returned error: %v", err)
	}
	if repeat.Total != jittered.Total {
		t.Errorf("Seeded jitter should repeat: %.2f vs %.2f", jittered.Total, repeat.Total)
	}
}

func TestEstimateValueRejectsNegativeStockpile(t *testing.T) {
	tn := DefaultTuning()

	nation := testNation(1)
	nation.Steel = -5

	_, err := EstimateValue(&nation, nil, EstimateOptions{}, tn)
	if err == nil {
		t.Fatal("Expected error for negative stockpile")
	}

	var invalidErr *InvalidInputError
	if !errors.As(err, &invalidErr) {
		t.Errorf("Expected InvalidInputError, got %T", err)
	}
}
