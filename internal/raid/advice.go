package raid

import "fmt"

// buildAdvisories maps the computed ratios and flags to fixed human-readable
// phrases. Order is the evaluation order of the rules, not sorted.
func buildAdvisories(t *RankedTarget, attacker MilitaryStrength) []string {
	var advisories []string

	if !t.Activity.IsActive {
		advisories = append(advisories, fmt.Sprintf("Inactive for %s", formatSince(t.Activity.MinutesSinceSeen)))
	} else if t.Activity.Level == VeryActive {
		advisories = append(advisories, "Logs in frequently, expect a quick response")
	}

	groundRatio := attacker.Ground / max(t.Strength.Ground, 1)
	switch {
	case groundRatio >= 2:
		advisories = append(advisories, "Much weaker ground forces")
	case groundRatio >= 1.25:
		advisories = append(advisories, "Weaker ground forces")
	case groundRatio < 1:
		advisories = append(advisories, "Stronger ground forces, risky")
	}

	if t.Strength.Air > attacker.Air {
		advisories = append(advisories, "Stronger air force, risky")
	} else if attacker.Air >= 2*max(t.Strength.Air, 1) {
		advisories = append(advisories, "Much weaker air force")
	}

	if t.Strength.Naval > attacker.Naval {
		advisories = append(advisories, "Navy could blockade, loot at risk")
	}

	if t.BeigeTurns > 0 {
		advisories = append(advisories, fmt.Sprintf("On beige for %d more turns", t.BeigeTurns))
	}

	if t.DefensiveWars > 0 {
		advisories = append(advisories, fmt.Sprintf("Already defending %d wars", t.DefensiveWars))
	}

	return advisories
}

// formatSince renders minutes-since-last-seen at day, hour or minute
// granularity. The never-seen sentinel renders as "a long time".
func formatSince(minutes float64) string {
	switch {
	case minutes >= neverSeenMinutes:
		return "a long time"
	case minutes >= 2*24*60:
		return fmt.Sprintf("%d days", int(minutes)/(24*60))
	case minutes >= 24*60:
		return "1 day"
	case minutes >= 60:
		return fmt.Sprintf("%d hours", int(minutes)/60)
	default:
		return fmt.Sprintf("%d minutes", int(minutes))
	}
}
