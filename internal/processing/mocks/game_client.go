package mocks

import (
	"context"

	"pnw_raid_finder/internal/app"
)

// MockGameClient is a test double for the game API client
type MockGameClient struct {
	// Responses to return
	NationResponse  *app.Nation
	NationsResponse []app.Nation
	PricesResponse  map[string]float64

	// Errors to return
	NationError  error
	NationsError error
	PricesError  error

	// Call tracking
	GetNationCalled       bool
	GetNationCalledWithID int
	GetNationsCalled      bool
	GetNationsCalledWith  [2]float64
	GetTradePricesCalled  bool
}

func (m *MockGameClient) GetNation(ctx context.Context, nationID int) (*app.Nation, error) {
	m.GetNationCalled = true
	m.GetNationCalledWithID = nationID
	return m.NationResponse, m.NationError
}

func (m *MockGameClient) GetNationsInRange(ctx context.Context, minScore, maxScore float64) ([]app.Nation, error) {
	m.GetNationsCalled = true
	m.GetNationsCalledWith = [2]float64{minScore, maxScore}
	return m.NationsResponse, m.NationsError
}

func (m *MockGameClient) GetTradePrices(ctx context.Context) (map[string]float64, error) {
	m.GetTradePricesCalled = true
	return m.PricesResponse, m.PricesError
}
