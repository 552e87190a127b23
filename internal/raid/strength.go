package raid

import "math"

// Units is the military unit subset shared by attacker profiles and
// candidate nations.
type Units struct {
	Soldiers int
	Tanks    int
	Aircraft int
	Ships    int
}

// MilitaryStrength is a pure function of unit counts: per-domain weighted
// scalars, a combined magnitude, and a replacement-cost valuation.
type MilitaryStrength struct {
	Ground        float64
	Air           float64
	Naval         float64
	Total         float64
	MonetaryValue float64
}

// ComputeStrength derives per-domain strength from unit counts.
//
// Ground counts one tank as TankGroundWeight soldiers. Air and naval are
// unit-for-unit baselines; the combined magnitude is a weighted Euclidean
// norm reflecting that air and naval units are disproportionately impactful
// per unit. The only failure mode is negative input.
func ComputeStrength(u Units, tn *Tuning) (MilitaryStrength, error) {
	if u.Soldiers < 0 {
		return MilitaryStrength{}, invalidInput("soldiers", "must be non-negative")
	}
	if u.Tanks < 0 {
		return MilitaryStrength{}, invalidInput("tanks", "must be non-negative")
	}
	if u.Aircraft < 0 {
		return MilitaryStrength{}, invalidInput("aircraft", "must be non-negative")
	}
	if u.Ships < 0 {
		return MilitaryStrength{}, invalidInput("ships", "must be non-negative")
	}

	st := tn.Strength

	ground := float64(u.Soldiers) + float64(u.Tanks)*st.TankGroundWeight
	air := float64(u.Aircraft)
	naval := float64(u.Ships)

	weightedAir := air * st.AirTotalWeight
	weightedNaval := naval * st.NavalTotalWeight
	total := math.Sqrt(ground*ground + weightedAir*weightedAir + weightedNaval*weightedNaval)

	value := float64(u.Soldiers)*st.SoldierCost +
		float64(u.Tanks)*st.TankCost +
		float64(u.Aircraft)*st.AircraftCost +
		float64(u.Ships)*st.ShipCost

	return MilitaryStrength{
		Ground:        ground,
		Air:           air,
		Naval:         naval,
		Total:         total,
		MonetaryValue: value,
	}, nil
}
