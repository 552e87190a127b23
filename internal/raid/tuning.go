package raid

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning collects every heuristic constant used by the scoring pipeline in
// one place. The upstream tooling this replaces carried three diverging
// copies of these numbers; tune here and nowhere else.
type Tuning struct {
	Activity ActivityTuning `yaml:"activity"`
	Strength StrengthTuning `yaml:"strength"`
	Loot     LootTuning     `yaml:"loot"`
	Rank     RankTuning     `yaml:"rank"`
}

// ActivityTuning controls the activity classifier.
//
// The three component weights must sum to 1.
type ActivityTuning struct {
	// Component weights for the composite activity score
	LoginWeight    float64 `yaml:"login_weight"`    // 0.5
	EconomicWeight float64 `yaml:"economic_weight"` // 0.3
	WarWeight      float64 `yaml:"war_weight"`      // 0.2

	// IsActive cut. Deliberately looser than the level buckets below.
	ActiveScoreThreshold float64 `yaml:"active_score_threshold"` // 20

	// Level bucket lower bounds
	VeryActiveMin float64 `yaml:"very_active_min"` // 80
	ActiveMin     float64 `yaml:"active_min"`      // 60
	ModerateMin   float64 `yaml:"moderate_min"`    // 30
	InactiveMin   float64 `yaml:"inactive_min"`    // 10

	// Trailing window for economic and war activity
	RecentWindow time.Duration `yaml:"recent_window"` // 7 days

	// Per-record contributions, each capped so no single signal dominates
	TradePoints   float64 `yaml:"trade_points"`    // 10 per trade
	TradeCap      float64 `yaml:"trade_cap"`       // 60
	BankPoints    float64 `yaml:"bank_points"`     // 5 per bank record
	BankCap       float64 `yaml:"bank_cap"`        // 40
	WarPoints     float64 `yaml:"war_points"`      // 25 per war
	WarPointsCap  float64 `yaml:"war_points_cap"`  // 100
	NeutralScore  float64 `yaml:"neutral_score"`   // 50, used when aux data is unavailable
}

// StrengthTuning controls the military strength model
type StrengthTuning struct {
	// One tank counts as this many soldiers for ground strength
	TankGroundWeight float64 `yaml:"tank_ground_weight"` // 40

	// Per-unit multipliers inside the combined Euclidean magnitude
	AirTotalWeight   float64 `yaml:"air_total_weight"`   // 10
	NavalTotalWeight float64 `yaml:"naval_total_weight"` // 100

	// Replacement cost per unit, in the same currency as nation cash
	SoldierCost  float64 `yaml:"soldier_cost"`  // 5
	TankCost     float64 `yaml:"tank_cost"`     // 60
	AircraftCost float64 `yaml:"aircraft_cost"` // 4000
	ShipCost     float64 `yaml:"ship_cost"`     // 50000
}

// AccessibilityStep maps a minimum ground-strength ratio to the fraction of
// a target's value considered reachable. Steps must be ordered by MinRatio
// descending; the first step whose MinRatio the ratio meets wins.
type AccessibilityStep struct {
	MinRatio float64 `yaml:"min_ratio"`
	Fraction float64 `yaml:"fraction"`
}

// LootTuning controls the loot/value estimator
type LootTuning struct {
	// Fraction of cash and stockpiles capturable in a single raid
	LootRate float64 `yaml:"loot_rate"` // 0.14

	// Fraction of destroyed military equipment realized as loot
	MilitaryLiquidationRate float64 `yaml:"military_liquidation_rate"` // 0.25

	// Production proxy: currency value per point of infrastructure
	InfraValuePerLevel float64 `yaml:"infra_value_per_level"` // 300

	// Inactivity bonuses, applied once after the accessibility discount
	VeryInactiveBonus float64 `yaml:"very_inactive_bonus"` // 1.4
	InactiveBonus     float64 `yaml:"inactive_bonus"`      // 1.25
	DefaultIdleBonus  float64 `yaml:"default_idle_bonus"`  // 1.1

	// Blockade risk: penalty applied when defender naval strength exceeds
	// the attacker's by more than NavalBlockadeRatio
	NavalBlockadePenalty float64 `yaml:"naval_blockade_penalty"` // 0.8
	NavalBlockadeRatio   float64 `yaml:"naval_blockade_ratio"`   // 1.5

	// Ground-ratio accessibility table, ordered by MinRatio descending
	AccessibilitySteps []AccessibilityStep `yaml:"accessibility_steps"`

	// Floor used when no step matches (attacker much weaker)
	AccessibilityFloor float64 `yaml:"accessibility_floor"` // 0.25

	// Accessibility assumed when no attacker profile is supplied
	DefaultAccessibility float64 `yaml:"default_accessibility"` // 0.7

	// Magnitude of the optional loot jitter (fraction of value, +/-)
	JitterFraction float64 `yaml:"jitter_fraction"` // 0.2
}

// RankTuning controls the composite target score.
//
// ValueWeight + SuccessWeight + InactivityWeight must sum to 1. The score is
// strictly increasing in accessible value and strictly decreasing in
// defensive war count.
type RankTuning struct {
	ValueWeight      float64 `yaml:"value_weight"`      // 0.45
	SuccessWeight    float64 `yaml:"success_weight"`    // 0.30
	InactivityWeight float64 `yaml:"inactivity_weight"` // 0.25

	// Saturation constant for value normalization: value/(value+sat)
	ValueSaturation float64 `yaml:"value_saturation"` // 25,000,000

	// Points deducted per ongoing defensive war
	DefensiveWarPenalty float64 `yaml:"defensive_war_penalty"` // 8

	// Scale applied to the weighted sum before the penalty
	ScoreScale float64 `yaml:"score_scale"` // 100
}

// DefaultTuning returns the production tuning table
func DefaultTuning() *Tuning {
	return &Tuning{
		Activity: ActivityTuning{
			LoginWeight:          0.5,
			EconomicWeight:       0.3,
			WarWeight:            0.2,
			ActiveScoreThreshold: 20,
			VeryActiveMin:        80,
			ActiveMin:            60,
			ModerateMin:          30,
			InactiveMin:          10,
			RecentWindow:         7 * 24 * time.Hour,
			TradePoints:          10,
			TradeCap:             60,
			BankPoints:           5,
			BankCap:              40,
			WarPoints:            25,
			WarPointsCap:         100,
			NeutralScore:         50,
		},
		Strength: StrengthTuning{
			TankGroundWeight: 40,
			AirTotalWeight:   10,
			NavalTotalWeight: 100,
			SoldierCost:      5,
			TankCost:         60,
			AircraftCost:     4000,
			ShipCost:         50000,
		},
		Loot: LootTuning{
			LootRate:                0.14,
			MilitaryLiquidationRate: 0.25,
			InfraValuePerLevel:      300,
			VeryInactiveBonus:       1.4,
			InactiveBonus:           1.25,
			DefaultIdleBonus:        1.1,
			NavalBlockadePenalty:    0.8,
			NavalBlockadeRatio:      1.5,
			AccessibilitySteps: []AccessibilityStep{
				{MinRatio: 3.0, Fraction: 0.95},
				{MinRatio: 2.0, Fraction: 0.85},
				{MinRatio: 1.5, Fraction: 0.75},
				{MinRatio: 1.0, Fraction: 0.60},
				{MinRatio: 0.5, Fraction: 0.40},
			},
			AccessibilityFloor:   0.25,
			DefaultAccessibility: 0.7,
			JitterFraction:       0.2,
		},
		Rank: RankTuning{
			ValueWeight:         0.45,
			SuccessWeight:       0.30,
			InactivityWeight:    0.25,
			ValueSaturation:     25_000_000,
			DefensiveWarPenalty: 8,
			ScoreScale:          100,
		},
	}
}

// DefaultPrices is the fallback market price table, used for any resource
// missing from the live price feed. A missing price must never zero out or
// abort a valuation.
var DefaultPrices = map[string]float64{
	"coal":      2500,
	"oil":       2800,
	"uranium":   3000,
	"iron":      2800,
	"bauxite":   2700,
	"lead":      2600,
	"gasoline":  3800,
	"munitions": 3500,
	"steel":     4000,
	"aluminum":  3600,
	"food":      150,
}

// LoadTuning reads a YAML tuning file layered over the defaults, so a file
// only needs to name the knobs it changes.
func LoadTuning(path string) (*Tuning, error) {
	tn := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, tn); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file %s: %w", path, err)
	}

	if err := tn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}

	return tn, nil
}

// Validate checks the tuning invariants that the scoring math relies on
func (tn *Tuning) Validate() error {
	const epsilon = 1e-9

	activitySum := tn.Activity.LoginWeight + tn.Activity.EconomicWeight + tn.Activity.WarWeight
	if diff := activitySum - 1; diff > epsilon || diff < -epsilon {
		return fmt.Errorf("activity weights must sum to 1, got %v", activitySum)
	}

	rankSum := tn.Rank.ValueWeight + tn.Rank.SuccessWeight + tn.Rank.InactivityWeight
	if diff := rankSum - 1; diff > epsilon || diff < -epsilon {
		return fmt.Errorf("rank weights must sum to 1, got %v", rankSum)
	}

	if tn.Loot.LootRate <= 0 || tn.Loot.LootRate > 1 {
		return fmt.Errorf("loot rate must be in (0,1], got %v", tn.Loot.LootRate)
	}

	if tn.Rank.ValueSaturation <= 0 {
		return fmt.Errorf("value saturation must be positive, got %v", tn.Rank.ValueSaturation)
	}

	prev := tn.Loot.AccessibilitySteps
	for i := 1; i < len(prev); i++ {
		if prev[i].MinRatio >= prev[i-1].MinRatio {
			return fmt.Errorf("accessibility steps must be ordered by min_ratio descending")
		}
		if prev[i].Fraction > prev[i-1].Fraction {
			return fmt.Errorf("accessibility fractions must be monotonic in min_ratio")
		}
	}

	return nil
}
