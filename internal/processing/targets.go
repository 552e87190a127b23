package processing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pnw_raid_finder/internal/app"
	"pnw_raid_finder/internal/raid"
	"pnw_raid_finder/internal/report"
)

// ArtifactFilename is the JSON artifact written after each run
const ArtifactFilename = "raid_targets.json"

// TargetProcessor orchestrates one target-finding run: fetch, rank, publish
type TargetProcessor struct {
	gameClient  GameClientInterface
	targetSheet TargetSheetInterface
	publisher   ArtifactPublisherInterface
	config      *app.Config
	tuning      *raid.Tuning
	filter      raid.FilterConfig

	// artifactPath is where the JSON artifact is written each run
	artifactPath string
}

// NewTargetProcessor creates a TargetProcessor with interface dependencies
// for testability. targetSheet and publisher may be nil when sheet
// publication or artifact upload is not configured.
func NewTargetProcessor(
	gameClient GameClientInterface,
	targetSheet TargetSheetInterface,
	publisher ArtifactPublisherInterface,
	config *app.Config,
	tuning *raid.Tuning,
	filter raid.FilterConfig,
) *TargetProcessor {
	return &TargetProcessor{
		gameClient:   gameClient,
		targetSheet:  targetSheet,
		publisher:    publisher,
		config:       config,
		tuning:       tuning,
		filter:       filter,
		artifactPath: ArtifactFilename,
	}
}

// FindRaidTargets runs one complete cycle: resolve the attacker, fetch the
// candidate snapshot and prices, rank, and publish. A price fetch failure
// degrades to the built-in price table rather than aborting the run.
func (tp *TargetProcessor) FindRaidTargets(ctx context.Context) (*report.Report, error) {
	attacker, err := tp.resolveAttacker(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attacker profile: %w", err)
	}

	minScore := attacker.Score * tp.filter.MinScoreMultiplier
	maxScore := attacker.Score * tp.filter.MaxScoreMultiplier

	candidates, err := tp.gameClient.GetNationsInRange(ctx, minScore, maxScore)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate nations: %w", err)
	}

	prices, err := tp.gameClient.GetTradePrices(ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Msg("Trade price fetch failed, falling back to default prices")
		prices = nil
	}

	targets, err := raid.FindTargets(candidates, attacker, prices, tp.filter, tp.tuning)
	if err != nil {
		return nil, fmt.Errorf("failed to rank targets: %w", err)
	}

	r := report.New(attacker, targets)

	log.Info().
		Str("run_id", r.RunID).
		Int("candidates", len(candidates)).
		Int("targets", len(targets)).
		Msg("Completed target-finding run")

	tp.publish(ctx, r)

	return r, nil
}

// resolveAttacker builds the attacker profile from the configured nation
func (tp *TargetProcessor) resolveAttacker(ctx context.Context) (raid.AttackerProfile, error) {
	nation, err := tp.gameClient.GetNation(ctx, tp.config.NationID)
	if err != nil {
		return raid.AttackerProfile{}, err
	}

	profile := raid.AttackerProfile{
		NationID: nation.ID,
		Score:    nation.Score,
		Units: raid.Units{
			Soldiers: nation.Soldiers,
			Tanks:    nation.Tanks,
			Aircraft: nation.Aircraft,
			Ships:    nation.Ships,
		},
	}

	log.Debug().
		Int("nation_id", profile.NationID).
		Str("nation", nation.Name).
		Float64("score", profile.Score).
		Msg("Resolved attacker profile")

	return profile, nil
}

// publish writes the JSON artifact and pushes the run to the configured
// sheet and deploy host. Publication failures are logged; the completed
// ranking is still returned to the caller.
func (tp *TargetProcessor) publish(ctx context.Context, r *report.Report) {
	if err := r.WriteJSON(tp.artifactPath); err != nil {
		log.Error().
			Err(err).
			Str("run_id", r.RunID).
			Msg("Failed to write report artifact")
	} else if tp.publisher != nil {
		if err := tp.publisher.PublishArtifact(tp.artifactPath); err != nil {
			log.Error().
				Err(err).
				Str("run_id", r.RunID).
				Msg("Failed to upload report artifact")
		}
	}

	if tp.targetSheet != nil && tp.config.SpreadsheetID != "" {
		if err := tp.targetSheet.PublishReport(ctx, tp.config.SpreadsheetID, r); err != nil {
			log.Error().
				Err(err).
				Str("run_id", r.RunID).
				Msg("Failed to publish targets to sheet")
		}
	}
}
