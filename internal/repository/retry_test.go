package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func positionConflict() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "queue_tickets_service_position_key"}
}

func TestRetryOnPositionConflictRecoversLostSlot(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := retryOnPositionConflict(func() error {
		attempts++
		if attempts == 1 {
			return positionConflict()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestRetryOnPositionConflictGivesUp(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := retryOnPositionConflict(func() error {
		attempts++
		return positionConflict()
	})
	require.Equal(t, positionAllocationRetries, attempts)
	require.True(t, IsUniqueViolation(err, "queue_tickets_service_position_key"))
}

func TestRetryOnPositionConflictOnlyRetriesPositionIndex(t *testing.T) {
	t.Parallel()

	// duplicate active ticket is a real conflict, not a transient race
	attempts := 0
	activeErr := &pgconn.PgError{Code: "23505", ConstraintName: "queue_tickets_active_user_sector_key"}
	err := retryOnPositionConflict(func() error {
		attempts++
		return activeErr
	})
	require.Equal(t, 1, attempts)
	require.ErrorIs(t, err, activeErr)

	attempts = 0
	boom := errors.New("connection reset")
	err = retryOnPositionConflict(func() error {
		attempts++
		return boom
	})
	require.Equal(t, 1, attempts)
	require.ErrorIs(t, err, boom)
}
