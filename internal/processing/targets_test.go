package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pnw_raid_finder/internal/app"
	"pnw_raid_finder/internal/processing/mocks"
	"pnw_raid_finder/internal/raid"
)

func attackerNation() *app.Nation {
	return &app.Nation{
		ID:       999,
		Name:     "Attackeria",
		Score:    1000,
		Soldiers: 5000,
		Tanks:    500,
		Aircraft: 100,
		Ships:    10,
	}
}

// raidableNation is inside the attacker's war range, weaker, wealthy and
// inactive, so it survives the whole pipeline under default settings.
func raidableNation() app.Nation {
	return app.Nation{
		ID:         101,
		Name:       "Rustbucket",
		LeaderName: "Rusty",
		Score:      1200,
		NumCities:  10,
		Soldiers:   1000,
		Tanks:      50,
		Aircraft:   10,
		Money:      1_000_000,
		LastActive: time.Now().Add(-10 * 24 * time.Hour).Format("2006-01-02 15:04:05"),
		Cities: []app.City{
			{ID: 1, Infrastructure: 1500},
			{ID: 2, Infrastructure: 1200},
		},
	}
}

func vacationNation() app.Nation {
	n := raidableNation()
	n.ID = 102
	n.Name = "Ghost Town"
	n.VacationModeTurns = 50
	return n
}

func newTestProcessor(t *testing.T, game *mocks.MockGameClient, sheet *mocks.MockTargetSheet, publisher *mocks.MockArtifactPublisher, spreadsheetID string) *TargetProcessor {
	t.Helper()

	cfg := &app.Config{NationID: 999, SpreadsheetID: spreadsheetID}

	var sheetIface TargetSheetInterface
	if sheet != nil {
		sheetIface = sheet
	}
	var pubIface ArtifactPublisherInterface
	if publisher != nil {
		pubIface = publisher
	}

	tp := NewTargetProcessor(game, sheetIface, pubIface, cfg, raid.DefaultTuning(), raid.DefaultFilterConfig())
	tp.artifactPath = filepath.Join(t.TempDir(), ArtifactFilename)
	return tp
}

func TestFindRaidTargetsHappyPath(t *testing.T) {
	game := &mocks.MockGameClient{
		NationResponse:  attackerNation(),
		NationsResponse: []app.Nation{raidableNation(), vacationNation()},
		PricesResponse:  map[string]float64{"steel": 4000},
	}
	sheet := &mocks.MockTargetSheet{}
	publisher := &mocks.MockArtifactPublisher{}

	tp := newTestProcessor(t, game, sheet, publisher, "sheet-1")

	r, err := tp.FindRaidTargets(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !game.GetNationCalled || game.GetNationCalledWithID != 999 {
		t.Error("Expected attacker nation lookup")
	}
	if !game.GetNationsCalled {
		t.Fatal("Expected candidate fetch")
	}
	if game.GetNationsCalledWith != [2]float64{750, 2000} {
		t.Errorf("Expected war-range window [750, 2000], got %v", game.GetNationsCalledWith)
	}

	if len(r.Targets) != 1 {
		t.Fatalf("Expected 1 target (vacation nation excluded), got %d", len(r.Targets))
	}
	if r.Targets[0].NationID != 101 {
		t.Errorf("Expected target 101, got %d", r.Targets[0].NationID)
	}

	if !sheet.PublishCalled || sheet.PublishedSheetID != "sheet-1" {
		t.Error("Expected sheet publication")
	}
	if sheet.PublishedReport.RunID != r.RunID {
		t.Error("Expected the same report published to the sheet")
	}

	if !publisher.PublishCalled || publisher.PublishedPath != tp.artifactPath {
		t.Error("Expected artifact upload")
	}
	if _, err := os.Stat(tp.artifactPath); err != nil {
		t.Errorf("Expected artifact on disk: %v", err)
	}
}

func TestFindRaidTargetsPriceFailureDegrades(t *testing.T) {
	game := &mocks.MockGameClient{
		NationResponse:  attackerNation(),
		NationsResponse: []app.Nation{raidableNation()},
		PricesError:     errors.New("market endpoint down"),
	}

	tp := newTestProcessor(t, game, nil, nil, "")

	r, err := tp.FindRaidTargets(context.Background())
	if err != nil {
		t.Fatalf("Expected degraded run, got error %v", err)
	}
	if len(r.Targets) != 1 {
		t.Errorf("Expected 1 target with default prices, got %d", len(r.Targets))
	}
}

func TestFindRaidTargetsAttackerFetchFails(t *testing.T) {
	game := &mocks.MockGameClient{
		NationError: errors.New("api down"),
	}

	tp := newTestProcessor(t, game, nil, nil, "")

	if _, err := tp.FindRaidTargets(context.Background()); err == nil {
		t.Error("Expected error when attacker lookup fails")
	}
	if game.GetNationsCalled {
		t.Error("Expected no candidate fetch after attacker failure")
	}
}

func TestFindRaidTargetsCandidateFetchFails(t *testing.T) {
	game := &mocks.MockGameClient{
		NationResponse: attackerNation(),
		NationsError:   errors.New("api down"),
	}

	tp := newTestProcessor(t, game, nil, nil, "")

	if _, err := tp.FindRaidTargets(context.Background()); err == nil {
		t.Error("Expected error when candidate fetch fails")
	}
}

func TestFindRaidTargetsSheetFailureDoesNotAbort(t *testing.T) {
	game := &mocks.MockGameClient{
		NationResponse:  attackerNation(),
		NationsResponse: []app.Nation{raidableNation()},
	}
	sheet := &mocks.MockTargetSheet{PublishError: errors.New("sheet unavailable")}

	tp := newTestProcessor(t, game, sheet, nil, "sheet-1")

	r, err := tp.FindRaidTargets(context.Background())
	if err != nil {
		t.Fatalf("Expected run to survive sheet failure, got %v", err)
	}
	if len(r.Targets) != 1 {
		t.Errorf("Expected ranking unaffected by sheet failure, got %d targets", len(r.Targets))
	}
}

func TestFindRaidTargetsSkipsSheetWhenUnconfigured(t *testing.T) {
	game := &mocks.MockGameClient{
		NationResponse:  attackerNation(),
		NationsResponse: []app.Nation{raidableNation()},
	}
	sheet := &mocks.MockTargetSheet{}

	tp := newTestProcessor(t, game, sheet, nil, "")

	if _, err := tp.FindRaidTargets(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if sheet.PublishCalled {
		t.Error("Expected no sheet publication without a spreadsheet ID")
	}
}

func TestFindRaidTargetsEmptySnapshot(t *testing.T) {
	game := &mocks.MockGameClient{
		NationResponse:  attackerNation(),
		NationsResponse: nil,
	}

	tp := newTestProcessor(t, game, nil, nil, "")

	r, err := tp.FindRaidTargets(context.Background())
	if err != nil {
		t.Fatalf("Expected empty result, not error, got %v", err)
	}
	if len(r.Targets) != 0 {
		t.Errorf("Expected 0 targets, got %d", len(r.Targets))
	}
}
