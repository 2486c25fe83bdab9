package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/repository/memory"
)

func TestSummaryCountsOnlyTodayAsIssued(t *testing.T) {
	t.Parallel()
	tickets := memory.NewQueueRepository()
	svc := NewAnalyticsService(tickets, nil)
	ctx := context.Background()

	old := &domain.QueueTicket{
		UserID:    "user-old",
		ServiceID: "svc-1",
		SectorID:  "sector-1",
		Status:    domain.QueueStatusWaiting,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, tickets.CreateWithPosition(ctx, old))

	fresh := &domain.QueueTicket{
		UserID:    "user-new",
		ServiceID: "svc-1",
		SectorID:  "sector-1",
		Status:    domain.QueueStatusWaiting,
	}
	require.NoError(t, tickets.CreateWithPosition(ctx, fresh))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	require.EqualValues(t, 2, summary[0].Waiting)
	require.EqualValues(t, 1, summary[0].IssuedToday)
	require.EqualValues(t, 0, summary[0].CompletedToday)
}

func TestSummaryCountsCompletionsToday(t *testing.T) {
	t.Parallel()
	tickets := memory.NewQueueRepository()
	svc := NewAnalyticsService(tickets, nil)
	ctx := context.Background()

	ticket := &domain.QueueTicket{
		UserID:    "user-1",
		ServiceID: "svc-1",
		SectorID:  "sector-1",
		Status:    domain.QueueStatusWaiting,
	}
	require.NoError(t, tickets.CreateWithPosition(ctx, ticket))

	for _, next := range []domain.QueueStatus{
		domain.QueueStatusCalled, domain.QueueStatusServing, domain.QueueStatusCompleted,
	} {
		prev := ticket.Status
		ok, err := tickets.UpdateStatusCAS(ctx, ticket.ID, prev, next, nil)
		require.NoError(t, err)
		require.True(t, ok)
		ticket.Status = next
	}

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	require.EqualValues(t, 0, summary[0].Waiting)
	require.EqualValues(t, 1, summary[0].CompletedToday)
	require.Empty(t, summary[0].NowServing)
}
