package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// Ensure DashboardService and HealthService implement their interfaces.
var (
	_ driving.DashboardService = (*DashboardService)(nil)
	_ driving.HealthService    = (*HealthService)(nil)
)

// DashboardService builds the participant landing page.
type DashboardService struct {
	events     driven.EventStore
	signatures driven.SignatureStore
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(events driven.EventStore, signatures driven.SignatureStore) *DashboardService {
	return &DashboardService{events: events, signatures: signatures}
}

// ForUser returns active events ordered by start date and the user's
// signatures, newest first.
func (s *DashboardService) ForUser(ctx context.Context, userID string) (*domain.Dashboard, error) {
	events, err := s.events.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	sigs, err := s.signatures.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	return &domain.Dashboard{Events: events, Signatures: sigs}, nil
}

// recentWindow is the span counted as recent signatures.
const recentWindow = 24 * time.Hour

// HealthService checks the database and object storage.
type HealthService struct {
	stats   driven.StatsStore
	objects driven.ObjectStore
	now     func() time.Time
}

// NewHealthService creates a new health service. objects may be nil.
func NewHealthService(stats driven.StatsStore, objects driven.ObjectStore) *HealthService {
	return &HealthService{stats: stats, objects: objects, now: time.Now}
}

// Check reports "ok" when every dependency responds, "degraded" otherwise.
func (s *HealthService) Check(ctx context.Context) *domain.HealthReport {
	now := s.now().UTC()
	report := &domain.HealthReport{
		Status:      domain.HealthOK,
		Database:    "connected",
		ObjectStore: "connected",
		CheckedAt:   now,
	}

	if err := s.stats.Ping(ctx); err != nil {
		logger.Error("database health check: %v", err)
		report.Status = domain.HealthDegraded
		report.Database = "unreachable"
	} else if stats, err := s.stats.Stats(ctx, now.Add(-recentWindow)); err != nil {
		logger.Error("database stats: %v", err)
		report.Status = domain.HealthDegraded
		report.Database = "error"
	} else {
		report.Stats = stats
	}

	if s.objects == nil {
		report.ObjectStore = "not configured"
	} else if err := s.objects.Ping(ctx); err != nil {
		logger.Warn("object storage health check: %v", err)
		report.Status = domain.HealthDegraded
		report.ObjectStore = "unreachable"
	}

	return report
}
