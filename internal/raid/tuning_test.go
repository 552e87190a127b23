package raid

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningIsValid(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("Default tuning must validate: %v", err)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	tn := DefaultTuning()
	tn.Activity.LoginWeight = 0.9 // sum now 1.4

	if err := tn.Validate(); err == nil {
		t.Error("Expected validation failure for activity weights not summing to 1")
	}

	tn = DefaultTuning()
	tn.Rank.ValueWeight = 0.9
	if err := tn.Validate(); err == nil {
		t.Error("Expected validation failure for rank weights not summing to 1")
	}
}

func TestValidateRejectsUnorderedAccessibilitySteps(t *testing.T) {
	tn := DefaultTuning()
	tn.Loot.AccessibilitySteps = []AccessibilityStep{
		{MinRatio: 1.0, Fraction: 0.6},
		{MinRatio: 2.0, Fraction: 0.85},
	}

	if err := tn.Validate(); err == nil {
		t.Error("Expected validation failure for ascending accessibility steps")
	}
}

func TestLoadTuningLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")

	// Only override the loot rate; everything else keeps its default
	content := "loot:\n  loot_rate: 0.2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tn, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning returned error: %v", err)
	}

	if tn.Loot.LootRate != 0.2 {
		t.Errorf("Expected overridden loot rate 0.2, got %v", tn.Loot.LootRate)
	}
	if tn.Strength.TankGroundWeight != 40 {
		t.Errorf("Expected untouched tank weight 40, got %v", tn.Strength.TankGroundWeight)
	}
}

func TestLoadTuningRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")

	// Breaks the weight-sum invariant
	content := "rank:\n  value_weight: 0.9\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTuning(path); err == nil {
		t.Error("Expected error for tuning file violating invariants")
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	if _, err := LoadTuning("/nonexistent/tuning.yaml"); err == nil {
		t.Error("Expected error for missing tuning file")
	}
}
