package app

import "time"

// Alliance identifies a nation's alliance affiliation
type Alliance struct {
	ID   int    `json:"id,string"`
	Name string `json:"name"`
}

// War represents a single war record attached to a nation
type War struct {
	ID         int    `json:"id,string"`
	Date       string `json:"date"`
	AttackerID int    `json:"att_id,string"`
	DefenderID int    `json:"def_id,string"`
	WarType    string `json:"war_type"`
	TurnsLeft  int    `json:"turns_left"`
}

// StartedAt parses the war's date field. Returns the zero time if the
// field is missing or malformed.
func (w *War) StartedAt() time.Time {
	t, err := ParseAPITime(w.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// City represents a single city owned by a nation
type City struct {
	ID             int     `json:"id,string"`
	Infrastructure float64 `json:"infrastructure"`
}

// Nation is a read-only snapshot of a nation as returned by the API.
// Unit counts and stockpiles are non-negative; vacation_mode_turns > 0
// means the nation is in protected status, beige_turns > 0 means it is
// temporarily war-immune.
type Nation struct {
	ID         int       `json:"id,string"`
	Name       string    `json:"nation_name"`
	LeaderName string    `json:"leader_name"`
	Alliance   *Alliance `json:"alliance"`
	AllianceID int       `json:"alliance_id,string"`
	Score      float64   `json:"score"`
	NumCities  int       `json:"num_cities"`
	Color      string    `json:"color"`

	Soldiers int `json:"soldiers"`
	Tanks    int `json:"tanks"`
	Aircraft int `json:"aircraft"`
	Ships    int `json:"ships"`
	Spies    int `json:"spies"`

	Money     float64 `json:"money"`
	Coal      float64 `json:"coal"`
	Oil       float64 `json:"oil"`
	Uranium   float64 `json:"uranium"`
	Iron      float64 `json:"iron"`
	Bauxite   float64 `json:"bauxite"`
	Lead      float64 `json:"lead"`
	Gasoline  float64 `json:"gasoline"`
	Munitions float64 `json:"munitions"`
	Steel     float64 `json:"steel"`
	Aluminum  float64 `json:"aluminum"`
	Food      float64 `json:"food"`

	VacationModeTurns int    `json:"vacation_mode_turns"`
	BeigeTurns        int    `json:"beige_turns"`
	LastActive        string `json:"last_active"`

	Cities []City `json:"cities"`
	Wars   []War  `json:"wars"`
}

// apiTimeLayouts are the timestamp formats the API has been observed to emit
var apiTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseAPITime parses a timestamp string from the API
func ParseAPITime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range apiTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// LastActiveAt returns the nation's last-seen timestamp, or nil when the
// field is absent or unparseable. Callers treat nil as "never seen".
func (n *Nation) LastActiveAt() *time.Time {
	if n.LastActive == "" {
		return nil
	}
	t, err := ParseAPITime(n.LastActive)
	if err != nil {
		return nil
	}
	return &t
}

// Resources returns the nation's resource stockpiles keyed by resource name.
// Money is deliberately excluded; cash is looted under its own rule.
func (n *Nation) Resources() map[string]float64 {
	return map[string]float64{
		"coal":      n.Coal,
		"oil":       n.Oil,
		"uranium":   n.Uranium,
		"iron":      n.Iron,
		"bauxite":   n.Bauxite,
		"lead":      n.Lead,
		"gasoline":  n.Gasoline,
		"munitions": n.Munitions,
		"steel":     n.Steel,
		"aluminum":  n.Aluminum,
		"food":      n.Food,
	}
}

// TotalInfrastructure sums infrastructure across the nation's cities
func (n *Nation) TotalInfrastructure() float64 {
	var total float64
	for _, c := range n.Cities {
		total += c.Infrastructure
	}
	return total
}

// DefensiveWarCount returns the number of ongoing wars in which the nation
// is the defender. A war with turns remaining is considered ongoing.
func (n *Nation) DefensiveWarCount() int {
	count := 0
	for _, w := range n.Wars {
		if w.DefenderID == n.ID && w.TurnsLeft > 0 {
			count++
		}
	}
	return count
}

// RecentWarCount returns the number of wars started within the trailing
// window ending at now.
func (n *Nation) RecentWarCount(now time.Time, window time.Duration) int {
	count := 0
	cutoff := now.Add(-window)
	for _, w := range n.Wars {
		started := w.StartedAt()
		if !started.IsZero() && started.After(cutoff) {
			count++
		}
	}
	return count
}

// TradePrice is the average market price for one resource
type TradePrice struct {
	Resource     string  `json:"resource"`
	AveragePrice float64 `json:"average_price"`
}

// NationsPage is one page of the paginated nations query
type NationsPage struct {
	Data          []Nation `json:"data"`
	PaginatorInfo struct {
		HasMorePages bool `json:"hasMorePages"`
		CurrentPage  int  `json:"currentPage"`
	} `json:"paginatorInfo"`
}
