package raid

import (
	"time"
)

// ActivityLevel buckets the composite activity score, ordered from least to
// most active.
type ActivityLevel int

const (
	VeryInactive ActivityLevel = iota
	Inactive
	Moderate
	Active
	VeryActive
)

func (l ActivityLevel) String() string {
	switch l {
	case VeryActive:
		return "VERY_ACTIVE"
	case Active:
		return "ACTIVE"
	case Moderate:
		return "MODERATE"
	case Inactive:
		return "INACTIVE"
	default:
		return "VERY_INACTIVE"
	}
}

// neverSeenMinutes is the sentinel used when a nation has no last-active
// timestamp: effectively "never seen", maximally inactive. A data gap must
// not hide a viable target nor crash the pipeline.
const neverSeenMinutes = 1e9

// RecentCounts holds trailing-window economic and war activity for a nation.
// A nil *RecentCounts means the data is absent and contributes nothing.
type RecentCounts struct {
	Trades      int
	BankRecords int
	Wars        int
}

// ActivityAssessment is the classifier's output, recomputed fresh per nation
// per query and never persisted.
type ActivityAssessment struct {
	IsActive         bool
	Score            float64 // 0..100
	Level            ActivityLevel
	MinutesSinceSeen float64

	// Contributing factors, each 0..100 before weighting
	LoginScore    float64
	EconomicScore float64
	WarScore      float64
}

// ClassifyActivity scores how active a nation is from its last-seen
// timestamp and optional trailing-window counts.
//
// lastActive nil is treated as "never seen" and maps to a login score of 0.
// counts nil is treated as zero recent activity. now supplies the reference
// clock so the classifier stays a pure function.
func ClassifyActivity(lastActive *time.Time, now time.Time, counts *RecentCounts, tn *Tuning) (ActivityAssessment, error) {
	if counts != nil {
		if counts.Trades < 0 {
			return ActivityAssessment{}, invalidInput("trades", "must be non-negative")
		}
		if counts.BankRecords < 0 {
			return ActivityAssessment{}, invalidInput("bank_records", "must be non-negative")
		}
		if counts.Wars < 0 {
			return ActivityAssessment{}, invalidInput("wars", "must be non-negative")
		}
	}

	minutes := neverSeenMinutes
	if lastActive != nil {
		minutes = now.Sub(*lastActive).Minutes()
		if minutes < 0 {
			minutes = 0
		}
	}

	login := loginRecencyScore(minutes)

	var economic, war float64
	if counts != nil {
		economic = min(float64(counts.Trades)*tn.Activity.TradePoints, tn.Activity.TradeCap) +
			min(float64(counts.BankRecords)*tn.Activity.BankPoints, tn.Activity.BankCap)
		war = min(float64(counts.Wars)*tn.Activity.WarPoints, tn.Activity.WarPointsCap)
	}

	score := tn.Activity.LoginWeight*login +
		tn.Activity.EconomicWeight*economic +
		tn.Activity.WarWeight*war
	score = clamp(score, 0, 100)

	return ActivityAssessment{
		IsActive:         score > tn.Activity.ActiveScoreThreshold,
		Score:            score,
		Level:            tn.Activity.levelFor(score),
		MinutesSinceSeen: minutes,
		LoginScore:       login,
		EconomicScore:    economic,
		WarScore:         war,
	}, nil
}

// NeutralAssessment is the degraded default used when the fetch of auxiliary
// activity data failed outright. A partial data feed never aborts a ranking
// run.
func NeutralAssessment(tn *Tuning) ActivityAssessment {
	score := tn.Activity.NeutralScore
	return ActivityAssessment{
		IsActive: score > tn.Activity.ActiveScoreThreshold,
		Score:    score,
		Level:    tn.Activity.levelFor(score),
	}
}

func (at *ActivityTuning) levelFor(score float64) ActivityLevel {
	switch {
	case score >= at.VeryActiveMin:
		return VeryActive
	case score >= at.ActiveMin:
		return Active
	case score >= at.ModerateMin:
		return Moderate
	case score >= at.InactiveMin:
		return Inactive
	default:
		return VeryInactive
	}
}

// loginRecencyScore maps minutes-since-last-seen to 0..100. The steps are
// monotonically decreasing and bottom out at 0 beyond seven days.
func loginRecencyScore(minutes float64) float64 {
	switch {
	case minutes < 60:
		return 100
	case minutes < 3*60:
		return 90
	case minutes < 6*60:
		return 80
	case minutes < 12*60:
		return 70
	case minutes < 24*60:
		return 60
	case minutes < 2*24*60:
		return 45
	case minutes < 3*24*60:
		return 30
	case minutes < 5*24*60:
		return 15
	case minutes < 7*24*60:
		return 5
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
