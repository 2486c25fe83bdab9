package service

import (
	"context"

	"github.com/civigo/citizen-portal/internal/repository"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// AnalyticsService serves read-only aggregates for the admin dashboard. It
// adds no state of its own: everything derives from persisted tickets plus
// the live board.
type AnalyticsService struct {
	tickets repository.QueueRepository
	board   *NowServingBoard
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.QueueRepository, board *NowServingBoard) *AnalyticsService {
	return &AnalyticsService{tickets: tickets, board: board}
}

// SectorSummary is one dashboard row.
type SectorSummary struct {
	SectorID       string  `json:"sector_id"`
	SectorName     string  `json:"sector_name"`
	Waiting        int64   `json:"waiting"`
	Called         int64   `json:"called"`
	Serving        int64   `json:"serving"`
	CompletedToday int64   `json:"completed_today"`
	IssuedToday    int64   `json:"issued_today"`
	AvgWaitSeconds float64 `json:"avg_wait_seconds"`
	NowServing     string  `json:"now_serving,omitempty"`
}

// Summary returns per-sector queue aggregates.
func (s *AnalyticsService) Summary(ctx context.Context) ([]SectorSummary, error) {
	stats, err := s.tickets.StatsBySector(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]SectorSummary, 0, len(stats))
	for _, row := range stats {
		result = append(result, SectorSummary{
			SectorID:       row.SectorID,
			SectorName:     row.SectorName,
			Waiting:        row.Waiting,
			Called:         row.Called,
			Serving:        row.Serving,
			CompletedToday: row.CompletedToday,
			IssuedToday:    row.IssuedToday,
			AvgWaitSeconds: row.AvgWaitSeconds,
			NowServing:     s.board.Get(ctx, row.SectorID),
		})
	}
	return result, nil
}
