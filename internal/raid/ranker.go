package raid

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"

	"pnw_raid_finder/internal/app"
)

// SortKey selects the ordering of the final result list
type SortKey string

const (
	SortByTargetScore SortKey = "score"    // composite target score (default)
	SortByLoot        SortKey = "loot"     // raw accessible value
	SortBySuccess     SortKey = "success"  // success-chance proxy
	SortByInactive    SortKey = "inactive" // least active first
)

// AttackerProfile describes the requesting nation: its war-range score and
// the unit counts its strength is derived from.
type AttackerProfile struct {
	NationID int
	Score    float64
	Units    Units
}

// FilterConfig is the ranker's configuration surface. All knobs are plain
// values; zero values for the optional ratio filters disable them.
type FilterConfig struct {
	// Now is the reference clock; the zero value means time.Now()
	Now time.Time

	// NumResults truncates the final list
	NumResults int

	// War-range eligibility window as multiples of the attacker's score
	MinScoreMultiplier float64
	MaxScoreMultiplier float64

	// Exclude nations with more vacation/beige turns than these thresholds.
	// The default of 0 excludes anyone in vacation mode or on beige.
	VacationTurnsThreshold int
	BeigeTurnsThreshold    int

	// Exclude nations seen online within the last this-many minutes; they
	// are likely to log in and fight back. 0 disables the filter. A nation
	// with no last-seen timestamp is never excluded by it.
	ActiveMinutesCutoff float64

	// Exclude nations already defending this many wars or more
	MaxDefensiveSlots int

	// Optional blocklists
	ExcludedAllianceIDs []int
	ExcludedColors      []string

	// Military ratio filters. WeakGroundOnly keeps only targets with less
	// ground strength than the attacker. The Max ratios exclude targets that
	// out-class the attacker in that domain by more than the given factor;
	// 0 disables. MaxStrengthRatio compares combined magnitudes and is
	// bypassed by IncludeStrongTargets.
	WeakGroundOnly       bool
	MinGroundRatio       float64
	MaxAirRatio          float64
	MaxNavalRatio        float64
	MaxStrengthRatio     float64
	IncludeStrongTargets bool

	// Drop targets whose accessible value falls below this floor
	MinAccessibleValue float64

	SortBy SortKey

	// Optional per-nation trailing-window activity counts keyed by nation
	// ID. Nations missing from the map fall back to war records alone.
	Counts map[int]RecentCounts

	// Optional loot jitter source; nil keeps the estimate deterministic
	Jitter *rand.Rand
}

// DefaultFilterConfig returns the ranker defaults
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		NumResults:         15,
		MinScoreMultiplier: 0.75,
		MaxScoreMultiplier: 2.0,
		MaxDefensiveSlots:  3,
		MaxStrengthRatio:   1.5,
		SortBy:             SortByTargetScore,
	}
}

// RankedTarget is one entry of the ranked result list
type RankedTarget struct {
	NationID     int
	Name         string
	LeaderName   string
	AllianceID   int
	AllianceName string
	Score        float64
	Cities       int

	DefensiveWars int
	BeigeTurns    int

	Activity ActivityAssessment
	Strength MilitaryStrength
	Value    ValueEstimate

	// SuccessChance is a 0..1 proxy derived from the strength ratios
	SuccessChance float64

	// TargetScore is the composite ranking key
	TargetScore float64

	// Advisories are fixed human-readable phrases in rule-evaluation order
	Advisories []string
}

// FindTargets runs the full filter, evaluate, score, sort pipeline over a
// candidate snapshot and returns the ranked raid target list.
//
// Filters only remove candidates; nothing is reordered until the final sort,
// which is fully tie-broken so two runs over the same snapshot produce
// identical output regardless of how the parallel evaluation interleaves.
// An empty result is a valid outcome, not an error.
func FindTargets(candidates []app.Nation, attacker AttackerProfile, prices map[string]float64, cfg FilterConfig, tn *Tuning) ([]RankedTarget, error) {
	attackerStrength, err := ComputeStrength(attacker.Units, tn)
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	minScore := attacker.Score * cfg.MinScoreMultiplier
	maxScore := attacker.Score * cfg.MaxScoreMultiplier

	// Stage 1: war-range eligibility
	eligible := lo.Filter(candidates, func(n app.Nation, _ int) bool {
		return n.Score >= minScore && n.Score <= maxScore
	})

	// Stage 2: status filters
	eligible = lo.Filter(eligible, func(n app.Nation, _ int) bool {
		if n.ID == attacker.NationID {
			return false
		}
		if n.VacationModeTurns > cfg.VacationTurnsThreshold {
			return false
		}
		if n.BeigeTurns > cfg.BeigeTurnsThreshold {
			return false
		}
		if lo.Contains(cfg.ExcludedAllianceIDs, n.AllianceID) {
			return false
		}
		if lo.Contains(cfg.ExcludedColors, n.Color) {
			return false
		}
		if cfg.ActiveMinutesCutoff > 0 {
			if at := n.LastActiveAt(); at != nil && now.Sub(*at).Minutes() < cfg.ActiveMinutesCutoff {
				return false
			}
		}
		return true
	})

	// Stage 3: defensive war slots. A nation at the limit is excluded.
	eligible = lo.Filter(eligible, func(n app.Nation, _ int) bool {
		return n.DefensiveWarCount() < cfg.MaxDefensiveSlots
	})

	log.Debug().
		Int("candidates", len(candidates)).
		Int("eligible", len(eligible)).
		Float64("min_score", minScore).
		Float64("max_score", maxScore).
		Msg("Candidates surviving status filters")

	// Stage 4: per-candidate evaluation. Candidates are independent, so this
	// maps in parallel; lop.Map preserves input order.
	evaluated := lop.Map(eligible, func(n app.Nation, _ int) *RankedTarget {
		target, err := evaluateCandidate(&n, attacker, attackerStrength, prices, now, cfg, tn)
		if err != nil {
			log.Warn().
				Err(err).
				Int("nation_id", n.ID).
				Str("nation", n.Name).
				Msg("Excluding candidate after evaluation fault")
			return nil
		}
		return target
	})

	results := lo.Filter(evaluated, func(t *RankedTarget, _ int) bool {
		return t != nil
	})

	// Stages 5 and 6: military ratio and minimum loot filters
	results = lo.Filter(results, func(t *RankedTarget, _ int) bool {
		return passesRatioFilters(t, attackerStrength, cfg)
	})
	results = lo.Filter(results, func(t *RankedTarget, _ int) bool {
		return t.Value.Accessible >= cfg.MinAccessibleValue
	})

	// Stage 8: deterministic sort with full tie-breaking
	sortTargets(results, cfg.SortBy)

	// Stage 9: truncate
	if cfg.NumResults > 0 && len(results) > cfg.NumResults {
		results = results[:cfg.NumResults]
	}

	ranked := make([]RankedTarget, len(results))
	for i, t := range results {
		ranked[i] = *t
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("targets", len(ranked)).
		Str("sort_by", string(cfg.SortBy)).
		Msg("Ranked raid targets")

	return ranked, nil
}

// evaluateCandidate computes the derived structures and composite score for
// one surviving candidate. Any fault here, including non-finite arithmetic,
// excludes only this candidate.
func evaluateCandidate(n *app.Nation, attacker AttackerProfile, attackerStrength MilitaryStrength, prices map[string]float64, now time.Time, cfg FilterConfig, tn *Tuning) (*RankedTarget, error) {
	counts := countsForNation(n, now, cfg, tn)

	activity, err := ClassifyActivity(n.LastActiveAt(), now, counts, tn)
	if err != nil {
		return nil, err
	}

	strength, err := ComputeStrength(Units{
		Soldiers: n.Soldiers,
		Tanks:    n.Tanks,
		Aircraft: n.Aircraft,
		Ships:    n.Ships,
	}, tn)
	if err != nil {
		return nil, err
	}

	value, err := EstimateValue(n, prices, EstimateOptions{
		AttackerUnits: &attacker.Units,
		Activity:      &activity,
		Jitter:        cfg.Jitter,
	}, tn)
	if err != nil {
		return nil, err
	}

	chance := successChance(attackerStrength, strength)
	defWars := n.DefensiveWarCount()

	target := &RankedTarget{
		NationID:      n.ID,
		Name:          n.Name,
		LeaderName:    n.LeaderName,
		AllianceID:    n.AllianceID,
		Score:         n.Score,
		Cities:        n.NumCities,
		DefensiveWars: defWars,
		BeigeTurns:    n.BeigeTurns,
		Activity:      activity,
		Strength:      strength,
		Value:         value,
		SuccessChance: chance,
	}
	if n.Alliance != nil {
		target.AllianceName = n.Alliance.Name
	}

	target.TargetScore = compositeScore(target, tn)
	target.Advisories = buildAdvisories(target, attackerStrength)

	if !isFinite(target.TargetScore) || !isFinite(value.Accessible) {
		return nil, invalidInput("target_score", "produced a non-finite value")
	}

	return target, nil
}

// countsForNation resolves trailing-window activity counts: the caller's map
// when present, otherwise war records derived from the snapshot itself.
func countsForNation(n *app.Nation, now time.Time, cfg FilterConfig, tn *Tuning) *RecentCounts {
	if c, ok := cfg.Counts[n.ID]; ok {
		return &c
	}
	return &RecentCounts{
		Wars: n.RecentWarCount(now, tn.Activity.RecentWindow),
	}
}

// compositeScore blends normalized accessible value, the success-chance
// proxy and an inactivity term, then deducts a defensive-war penalty. The
// result is strictly increasing in accessible value and strictly decreasing
// in defensive war count, all else equal.
func compositeScore(t *RankedTarget, tn *Tuning) float64 {
	rt := tn.Rank

	valueTerm := t.Value.Accessible / (t.Value.Accessible + rt.ValueSaturation)
	inactivityTerm := (100 - t.Activity.Score) / 100

	score := rt.ScoreScale * (rt.ValueWeight*valueTerm +
		rt.SuccessWeight*t.SuccessChance +
		rt.InactivityWeight*inactivityTerm)

	return score - rt.DefensiveWarPenalty*float64(t.DefensiveWars)
}

// successChance folds the per-domain strength ratios into a 0..1 proxy.
// Ground dominates; each term saturates as the attacker's advantage grows.
// An attacker with no military yields 0, which is expected rather than a
// special case.
func successChance(attacker, defender MilitaryStrength) float64 {
	g := ratioTerm(attacker.Ground, defender.Ground)
	a := ratioTerm(attacker.Air, defender.Air)
	nv := ratioTerm(attacker.Naval, defender.Naval)
	return clamp(0.6*g+0.25*a+0.15*nv, 0, 1)
}

func ratioTerm(attacker, defender float64) float64 {
	r := attacker / max(defender, 1)
	return r / (r + 1)
}

func passesRatioFilters(t *RankedTarget, attacker MilitaryStrength, cfg FilterConfig) bool {
	if cfg.WeakGroundOnly && t.Strength.Ground >= attacker.Ground {
		return false
	}
	if cfg.MinGroundRatio > 0 {
		if attacker.Ground/max(t.Strength.Ground, 1) < cfg.MinGroundRatio {
			return false
		}
	}
	if cfg.MaxAirRatio > 0 {
		if t.Strength.Air/max(attacker.Air, 1) > cfg.MaxAirRatio {
			return false
		}
	}
	if cfg.MaxNavalRatio > 0 {
		if t.Strength.Naval/max(attacker.Naval, 1) > cfg.MaxNavalRatio {
			return false
		}
	}
	if cfg.MaxStrengthRatio > 0 && !cfg.IncludeStrongTargets {
		if t.Strength.Total > attacker.Total*cfg.MaxStrengthRatio {
			return false
		}
	}
	return true
}

// sortTargets orders descending by the selected key, then by accessible
// value descending, then by nation ID ascending for determinism.
func sortTargets(targets []*RankedTarget, key SortKey) {
	primary := func(t *RankedTarget) float64 {
		switch key {
		case SortByLoot:
			return t.Value.Accessible
		case SortBySuccess:
			return t.SuccessChance
		case SortByInactive:
			// least active first: invert the activity score
			return -t.Activity.Score
		default:
			return t.TargetScore
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		pi, pj := primary(targets[i]), primary(targets[j])
		if pi != pj {
			return pi > pj
		}
		if targets[i].Value.Accessible != targets[j].Value.Accessible {
			return targets[i].Value.Accessible > targets[j].Value.Accessible
		}
		return targets[i].NationID < targets[j].NationID
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
