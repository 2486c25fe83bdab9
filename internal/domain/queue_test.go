package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from QueueStatus
		to   QueueStatus
	}{
		{QueueStatusWaiting, QueueStatusCalled},
		{QueueStatusWaiting, QueueStatusForwarded},
		{QueueStatusWaiting, QueueStatusCancelled},
		{QueueStatusWaiting, QueueStatusNoShow},
		{QueueStatusCalled, QueueStatusServing},
		{QueueStatusCalled, QueueStatusForwarded},
		{QueueStatusCalled, QueueStatusCancelled},
		{QueueStatusCalled, QueueStatusNoShow},
		{QueueStatusServing, QueueStatusCompleted},
	}
	for _, tc := range allowed {
		require.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	statuses := []QueueStatus{
		QueueStatusWaiting, QueueStatusCalled, QueueStatusServing,
		QueueStatusForwarded, QueueStatusCompleted, QueueStatusCancelled, QueueStatusNoShow,
	}
	allowedSet := map[[2]QueueStatus]bool{}
	for _, tc := range allowed {
		allowedSet[[2]QueueStatus{tc.from, tc.to}] = true
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if allowedSet[[2]QueueStatus{from, to}] {
				continue
			}
			require.False(t, CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	t.Parallel()

	for _, s := range []QueueStatus{QueueStatusForwarded, QueueStatusCompleted, QueueStatusCancelled, QueueStatusNoShow} {
		require.True(t, s.IsTerminal())
		require.False(t, s.IsActive())
	}
	for _, s := range ActiveStatuses {
		require.False(t, s.IsTerminal())
		require.True(t, s.IsActive())
	}
}

func TestRoleIsStaff(t *testing.T) {
	t.Parallel()

	require.False(t, RoleCitizen.IsStaff())
	require.True(t, RoleOfficer.IsStaff())
	require.True(t, RoleHelpdesk.IsStaff())
	require.True(t, RoleAdmin.IsStaff())
}

func TestPublicUserOmitsCredentials(t *testing.T) {
	t.Parallel()

	idNum := "ID-123"
	u := &User{
		ID:                   "u1",
		Name:                 "Alem",
		PhoneNumber:          "0911111111",
		IdentificationNumber: &idNum,
		PasswordHash:         "$2a$10$secret",
		Role:                 RoleCitizen,
	}
	pub := u.Public()
	require.Equal(t, "u1", pub.ID)
	require.Equal(t, "Alem", pub.Name)
	require.Equal(t, "0911111111", pub.PhoneNumber)
	require.Equal(t, RoleCitizen, pub.Role)
}
