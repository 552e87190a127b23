package mocks

import (
	"context"

	"pnw_raid_finder/internal/report"
)

// MockTargetSheet is a test double for the target sheet manager
type MockTargetSheet struct {
	PublishError error

	PublishCalled    bool
	PublishedReport  *report.Report
	PublishedSheetID string
}

func (m *MockTargetSheet) PublishReport(ctx context.Context, spreadsheetID string, r *report.Report) error {
	m.PublishCalled = true
	m.PublishedReport = r
	m.PublishedSheetID = spreadsheetID
	return m.PublishError
}

// MockArtifactPublisher is a test double for the SCP artifact publisher
type MockArtifactPublisher struct {
	PublishError error

	PublishCalled bool
	PublishedPath string
}

func (m *MockArtifactPublisher) PublishArtifact(localPath string) error {
	m.PublishCalled = true
	m.PublishedPath = localPath
	return m.PublishError
}
