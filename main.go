package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"pnw_raid_finder/internal/app"
	"pnw_raid_finder/internal/deployment"
	"pnw_raid_finder/internal/pnw"
	"pnw_raid_finder/internal/processing"
	"pnw_raid_finder/internal/raid"
	"pnw_raid_finder/internal/sheets"
	"pnw_raid_finder/internal/store"

	"github.com/rs/zerolog/log"
)

// snapshotDir is where the badger snapshot cache lives
const snapshotDir = "db/snapshots"

func main() {
	app.SetupEnvironment()

	// Parse command line flags
	interval := flag.Duration("interval", 30*time.Minute, "Interval between target updates (e.g., 15m, 1h)")
	runOnce := flag.Bool("once", false, "Run once and exit (don't start scheduler)")
	limit := flag.Int("limit", 15, "Maximum number of targets to report")
	sortBy := flag.String("sort", "score", "Sort order: score, loot, success, inactive")
	includeStrong := flag.Bool("include-strong", false, "Include targets stronger than the military cap")
	minLoot := flag.Float64("min-loot", 0, "Minimum accessible loot value")
	activeCutoff := flag.Float64("active-cutoff", 0, "Exclude nations seen online within this many minutes (0 disables)")
	tuningFile := flag.String("tuning", "", "Path to a YAML tuning override file")
	flag.Parse()

	log.Info().
		Dur("interval", *interval).
		Bool("run_once", *runOnce).
		Int("limit", *limit).
		Str("sort", *sortBy).
		Msg("Starting raid target finder")

	// Load configuration
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.UpdateInterval = *interval
	if *tuningFile != "" {
		config.TuningFile = *tuningFile
	}

	tuning := raid.DefaultTuning()
	if config.TuningFile != "" {
		tuning, err = raid.LoadTuning(config.TuningFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.TuningFile).Msg("Failed to load tuning file")
		}
		log.Info().Str("path", config.TuningFile).Msg("Loaded tuning overrides")
	}

	filter := raid.DefaultFilterConfig()
	filter.NumResults = *limit
	filter.SortBy = raid.SortKey(*sortBy)
	filter.IncludeStrongTargets = *includeStrong
	filter.MinAccessibleValue = *minLoot
	filter.ActiveMinutesCutoff = *activeCutoff

	ctx := context.Background()

	// Initialize the API client with its snapshot-backed cache
	pnwClient := pnw.NewClient(config.PNWAPIKey)

	var snapshots pnw.SnapshotStore
	if s, err := store.Open(snapshotDir); err != nil {
		log.Warn().Err(err).Msg("Snapshot store unavailable, caching in memory only")
	} else {
		snapshots = s
		defer s.Close()
	}
	cachedClient := pnw.NewCachedClient(pnwClient, snapshots)

	// Sheet publication is optional
	var targetSheet processing.TargetSheetInterface
	if config.SpreadsheetID != "" {
		sheetsClient, err := sheets.NewClient(ctx, config.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
		targetSheet = sheets.NewTargetSheetManager(sheetsClient)
	}

	// Artifact upload is optional
	var publisher processing.ArtifactPublisherInterface
	if config.DeployURL != "" {
		p, err := deployment.NewArtifactPublisher(config.DeployURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure artifact publisher")
		}
		defer p.Disconnect()
		publisher = p
	}

	processor := processing.NewTargetProcessor(cachedClient, targetSheet, publisher, config, tuning, filter)

	// Define the main processing function
	findTargets := func() {
		log.Debug().Msg("Starting target-finding cycle")

		// Reset API call counter at the start of each cycle
		pnwClient.ResetAPICallCount()

		r, err := processor.FindRaidTargets(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to find raid targets")
			return
		}

		fmt.Fprint(os.Stdout, r.RenderTable())

		log.Info().
			Int64("api_calls", pnwClient.GetAPICallCount()).
			Int("targets", len(r.Targets)).
			Msg("Completed target-finding cycle")
	}

	// Run initial processing
	log.Info().Msg("Running initial target search")
	findTargets()

	// Exit if run-once flag is set or scheduling is disabled
	if *runOnce || *interval <= 0 {
		log.Info().Msg("Run-once mode: exiting after initial search")
		return
	}

	// Start scheduled processing
	log.Info().
		Dur("interval", *interval).
		Msg("Starting scheduled target updates")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for range ticker.C {
		findTargets()
	}
}
