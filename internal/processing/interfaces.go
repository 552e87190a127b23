package processing

import (
	"context"

	"pnw_raid_finder/internal/app"
	"pnw_raid_finder/internal/report"
)

// GameClientInterface defines the game API methods used by TargetProcessor
type GameClientInterface interface {
	GetNation(ctx context.Context, nationID int) (*app.Nation, error)
	GetNationsInRange(ctx context.Context, minScore, maxScore float64) ([]app.Nation, error)
	GetTradePrices(ctx context.Context) (map[string]float64, error)
}

// TargetSheetInterface defines the sheet publication methods used by
// TargetProcessor.
type TargetSheetInterface interface {
	PublishReport(ctx context.Context, spreadsheetID string, r *report.Report) error
}

// ArtifactPublisherInterface defines the artifact upload methods used by
// TargetProcessor.
type ArtifactPublisherInterface interface {
	PublishArtifact(localPath string) error
}
