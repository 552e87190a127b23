package raid

import (
	"time"

	"pnw_raid_finder/internal/app"
)

// Helpers shared by the raid engine tests.

// testNow is the fixed reference clock used across tests so activity math
// stays reproducible.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// testNation builds a plausible candidate nation. Tests override fields as
// needed.
func testNation(id int) app.Nation {
	lastActive := testNow.Add(-2 * time.Hour)
	return app.Nation{
		ID:         id,
		Name:       "Test Nation",
		LeaderName: "Test Leader",
		Score:      1200,
		NumCities:  10,
		Color:      "blue",
		Soldiers:   1000,
		Tanks:      50,
		Aircraft:   10,
		Ships:      0,
		Money:      1_000_000,
		LastActive: lastActive.Format("2006-01-02 15:04:05"),
		Cities: []app.City{
			{ID: 1, Infrastructure: 1500},
			{ID: 2, Infrastructure: 1200},
		},
	}
}

// testAttacker matches the reference attacker used by the scenario tests
func testAttacker() AttackerProfile {
	return AttackerProfile{
		NationID: 999,
		Score:    1000,
		Units: Units{
			Soldiers: 5000,
			Tanks:    500,
			Aircraft: 100,
			Ships:    10,
		},
	}
}

func minutesAgo(m float64) *time.Time {
	t := testNow.Add(-time.Duration(m * float64(time.Minute)))
	return &t
}

func daysAgo(d int) *time.Time {
	t := testNow.Add(-time.Duration(d) * 24 * time.Hour)
	return &t
}
