package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pnw_raid_finder/internal/raid"
)

// Report is one completed target-finding run, ready for rendering and
// publication.
type Report struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	AttackerID    int                 `json:"attacker_id"`
	AttackerScore float64             `json:"attacker_score"`
	Targets       []raid.RankedTarget `json:"targets"`
}

// New builds a report for the given run, stamping it with a fresh run ID
func New(attacker raid.AttackerProfile, targets []raid.RankedTarget) *Report {
	return &Report{
		RunID:         uuid.New().String(),
		GeneratedAt:   time.Now().UTC(),
		AttackerID:    attacker.NationID,
		AttackerScore: attacker.Score,
		Targets:       targets,
	}
}

// englishPrinter renders money and counts with thousands separators
var englishPrinter = message.NewPrinter(language.English)

// FormatMoney renders a dollar amount with grouping, e.g. $1,234,567
func FormatMoney(v float64) string {
	return englishPrinter.Sprintf("$%.0f", v)
}

// RenderTable renders the target list as an aligned text table for console
// output.
func (r *Report) RenderTable() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Raid targets for nation %d (score %.2f), run %s\n\n",
		r.AttackerID, r.AttackerScore, r.RunID)

	if len(r.Targets) == 0 {
		sb.WriteString("No targets found.\n")
		return sb.String()
	}

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNATION\tALLIANCE\tSCORE\tLOOT\tCHANCE\tACTIVITY\tTARGET SCORE\tNOTES")

	for i, t := range r.Targets {
		alliance := t.AllianceName
		if alliance == "" {
			alliance = "None"
		}
		fmt.Fprintf(w, "%d\t%s (%d)\t%s\t%.2f\t%s\t%.0f%%\t%s\t%.1f\t%s\n",
			i+1,
			t.Name,
			t.NationID,
			alliance,
			t.Score,
			FormatMoney(t.Value.Accessible),
			t.SuccessChance*100,
			t.Activity.Level.String(),
			t.TargetScore,
			strings.Join(t.Advisories, "; "),
		)
	}
	w.Flush()

	return sb.String()
}

// WriteJSON writes the report as a JSON artifact at path. The file is
// written atomically via a temp file rename.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize report artifact: %w", err)
	}

	log.Info().
		Str("run_id", r.RunID).
		Str("path", path).
		Int("targets", len(r.Targets)).
		Msg("Wrote report artifact")

	return nil
}
