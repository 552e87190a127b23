package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pnw_raid_finder/internal/config"
	"pnw_raid_finder/internal/report"
)

// TargetTabName is the spreadsheet tab the ranked target list is published to
const TargetTabName = "Raid Targets"

// TargetSheetManager handles business logic for the raid target sheet,
// separated from the spreadsheet transport for testability.
type TargetSheetManager struct {
	api   SheetsAPI
	retry config.RetryConfig
}

// NewTargetSheetManager creates a target sheet manager with the given API client
func NewTargetSheetManager(api SheetsAPI) *TargetSheetManager {
	return &TargetSheetManager{
		api:   api,
		retry: config.DefaultResilienceConfig.SheetWrite,
	}
}

// updateWithRetry retries a sheet write with exponential backoff. Sheet
// writes are the flakiest part of a run and are safe to repeat.
func (m *TargetSheetManager) updateWithRetry(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	var lastErr error
	wait := m.retry.InitialWait
	for attempt := 1; attempt <= m.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			log.Debug().
				Int("attempt", attempt).
				Str("range", range_).
				Msg("Retrying sheet write")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait = time.Duration(float64(wait) * m.retry.Multiplier)
			if wait > m.retry.MaxWait {
				wait = m.retry.MaxWait
			}
		}

		lastErr = m.api.UpdateRange(ctx, spreadsheetID, range_, values)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("sheet write failed after %d attempts: %w", m.retry.MaxAttempts, lastErr)
}

// EnsureTargetSheet creates the target tab with headers if it doesn't exist
func (m *TargetSheetManager) EnsureTargetSheet(ctx context.Context, spreadsheetID string) error {
	exists, err := m.api.SheetExists(ctx, spreadsheetID, TargetTabName)
	if err != nil {
		return fmt.Errorf("failed to check if target sheet exists: %w", err)
	}

	if exists {
		return nil
	}

	log.Info().
		Str("sheet_name", TargetTabName).
		Msg("Creating target sheet")

	if err := m.api.CreateSheet(ctx, spreadsheetID, TargetTabName); err != nil {
		return fmt.Errorf("failed to create target sheet: %w", err)
	}

	rangeSpec := fmt.Sprintf("%s!A1", TargetTabName)
	if err := m.api.UpdateRange(ctx, spreadsheetID, rangeSpec, m.GenerateHeaders()); err != nil {
		return fmt.Errorf("failed to write target sheet headers: %w", err)
	}

	return nil
}

// GenerateHeaders creates the header row for the target sheet
func (m *TargetSheetManager) GenerateHeaders() [][]interface{} {
	return [][]interface{}{
		{
			"Rank",
			"Nation",
			"Nation ID",
			"Leader",
			"Alliance",
			"Score",
			"Cities",
			"Accessible Loot",
			"Success Chance",
			"Activity",
			"Last Seen (min)",
			"Defensive Wars",
			"Target Score",
			"Advisories",
		},
	}
}

// PublishReport replaces the target sheet contents with the given run.
// Stale rows from a longer previous run are cleared first.
func (m *TargetSheetManager) PublishReport(ctx context.Context, spreadsheetID string, r *report.Report) error {
	if err := m.EnsureTargetSheet(ctx, spreadsheetID); err != nil {
		return err
	}

	clearSpec := fmt.Sprintf("%s!A2:N", TargetTabName)
	if err := m.api.ClearRange(ctx, spreadsheetID, clearSpec); err != nil {
		return fmt.Errorf("failed to clear previous targets: %w", err)
	}

	rows := m.ConvertReportToRows(r)
	if len(rows) > 0 {
		rangeSpec := fmt.Sprintf("%s!A2:N%d", TargetTabName, 1+len(rows))
		if err := m.updateWithRetry(ctx, spreadsheetID, rangeSpec, rows); err != nil {
			return fmt.Errorf("failed to write targets: %w", err)
		}
	}

	stampSpec := fmt.Sprintf("%s!P1:Q1", TargetTabName)
	stamp := [][]interface{}{
		{"Last Updated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if err := m.updateWithRetry(ctx, spreadsheetID, stampSpec, stamp); err != nil {
		return fmt.Errorf("failed to write last-updated stamp: %w", err)
	}

	log.Info().
		Str("run_id", r.RunID).
		Str("sheet_name", TargetTabName).
		Int("targets", len(rows)).
		Msg("Published targets to sheet")

	return nil
}

// ConvertReportToRows converts ranked targets into spreadsheet row format
func (m *TargetSheetManager) ConvertReportToRows(r *report.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Targets))
	for i, t := range r.Targets {
		alliance := t.AllianceName
		if alliance == "" {
			alliance = "None"
		}

		rows = append(rows, []interface{}{
			i + 1,
			t.Name,
			t.NationID,
			t.LeaderName,
			alliance,
			fmt.Sprintf("%.2f", t.Score),
			t.Cities,
			report.FormatMoney(t.Value.Accessible),
			fmt.Sprintf("%.0f%%", t.SuccessChance*100),
			t.Activity.Level.String(),
			fmt.Sprintf("%.0f", t.Activity.MinutesSinceSeen),
			t.DefensiveWars,
			fmt.Sprintf("%.1f", t.TargetScore),
			strings.Join(t.Advisories, "; "),
		})
	}
	return rows
}
