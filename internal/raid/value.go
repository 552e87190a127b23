package raid

import (
	"math/rand"

	"pnw_raid_finder/internal/app"
)

// ValueEstimate breaks down the estimated lootable value of one nation.
// All amounts are in the same currency unit as nation cash.
type ValueEstimate struct {
	Stockpile  float64
	Cash       float64
	Production float64
	Military   float64
	Total      float64

	// Total discounted by the accessibility fraction
	Accessible float64

	AccessibilityFraction float64
	ActivityMultiplier    float64
}

// EstimateOptions carries the optional inputs of the estimator.
//
// Jitter, when non-nil, applies a bounded random adjustment to the final
// values. It is injected rather than ambient so the estimator stays pure
// and repeatable by default.
type EstimateOptions struct {
	AttackerUnits *Units
	Activity      *ActivityAssessment
	Jitter        *rand.Rand
}

// EstimateValue computes how much a raid against the given nation is worth.
//
// Missing market prices fall back to DefaultPrices; a partial price feed
// never zeroes out a resource or fails the estimate. The inactivity bonus is
// applied exactly once, after the accessibility discount.
func EstimateValue(n *app.Nation, prices map[string]float64, opts EstimateOptions, tn *Tuning) (ValueEstimate, error) {
	if n.Money < 0 {
		return ValueEstimate{}, invalidInput("money", "must be non-negative")
	}
	for resource, amount := range n.Resources() {
		if amount < 0 {
			return ValueEstimate{}, invalidInput(resource, "must be non-negative")
		}
	}

	strength, err := ComputeStrength(Units{
		Soldiers: n.Soldiers,
		Tanks:    n.Tanks,
		Aircraft: n.Aircraft,
		Ships:    n.Ships,
	}, tn)
	if err != nil {
		return ValueEstimate{}, err
	}

	lt := tn.Loot

	var stockpile, production float64
	if n.NumCities > 0 {
		for resource, amount := range n.Resources() {
			stockpile += amount * priceFor(resource, prices) * lt.LootRate
		}
		production = n.TotalInfrastructure() * lt.InfraValuePerLevel * lt.LootRate
	}

	cash := n.Money * lt.LootRate
	military := strength.MonetaryValue * lt.MilitaryLiquidationRate
	total := stockpile + cash + production + military

	fraction := lt.DefaultAccessibility
	if opts.AttackerUnits != nil {
		attacker, err := ComputeStrength(*opts.AttackerUnits, tn)
		if err != nil {
			return ValueEstimate{}, err
		}
		fraction = lt.accessibilityFor(attacker.Ground / max(strength.Ground, 1))
		if strength.Naval > attacker.Naval*lt.NavalBlockadeRatio {
			fraction *= lt.NavalBlockadePenalty
		}
	}
	accessible := total * fraction

	multiplier := 1.0
	if opts.Activity != nil && !opts.Activity.IsActive {
		switch opts.Activity.Level {
		case VeryInactive:
			multiplier = lt.VeryInactiveBonus
		case Inactive:
			multiplier = lt.InactiveBonus
		default:
			multiplier = lt.DefaultIdleBonus
		}
		total *= multiplier
		accessible *= multiplier
	}

	if opts.Jitter != nil {
		factor := 1 + (opts.Jitter.Float64()*2-1)*lt.JitterFraction
		total *= factor
		accessible *= factor
	}

	return ValueEstimate{
		Stockpile:             stockpile,
		Cash:                  cash,
		Production:            production,
		Military:              military,
		Total:                 total,
		Accessible:            accessible,
		AccessibilityFraction: fraction,
		ActivityMultiplier:    multiplier,
	}, nil
}

// priceFor resolves a resource price from the live feed, falling back to the
// default table rather than treating the resource as worthless.
func priceFor(resource string, prices map[string]float64) float64 {
	if p, ok := prices[resource]; ok && p > 0 {
		return p
	}
	return DefaultPrices[resource]
}

// accessibilityFor maps a ground-strength ratio to the reachable fraction of
// a target's value via the monotonic step table.
func (lt *LootTuning) accessibilityFor(groundRatio float64) float64 {
	for _, step := range lt.AccessibilitySteps {
		if groundRatio >= step.MinRatio {
			return step.Fraction
		}
	}
	return lt.AccessibilityFloor
}
