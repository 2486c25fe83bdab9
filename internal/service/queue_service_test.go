package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/civigo/citizen-portal/internal/auth"
	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/events"
	"github.com/civigo/citizen-portal/internal/repository"
	"github.com/civigo/citizen-portal/internal/repository/memory"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

type queueFixture struct {
	svc      *QueueService
	users    repository.UserRepository
	tickets  repository.QueueRepository
	services repository.ServiceRepository

	permits  *domain.Service
	licenses *domain.Service
	health   *domain.Service

	citizenA *auth.Principal
	citizenB *auth.Principal
	officer  *auth.Principal
	helpdesk *auth.Principal
}

func newQueueFixture(t *testing.T) *queueFixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	tickets := memory.NewQueueRepository()
	services := memory.NewServiceRepository()
	sectors := memory.NewSectorRepository()

	cityHall := &domain.Sector{Name: "City Hall"}
	require.NoError(t, sectors.Create(ctx, cityHall))
	clinic := &domain.Sector{Name: "Public Health"}
	require.NoError(t, sectors.Create(ctx, clinic))

	permits := &domain.Service{SectorID: cityHall.ID, Name: "Building Permits", Mode: domain.ServiceModeQueue}
	require.NoError(t, services.Create(ctx, permits))
	licenses := &domain.Service{SectorID: cityHall.ID, Name: "Business Licenses", Mode: domain.ServiceModeQueue}
	require.NoError(t, services.Create(ctx, licenses))
	health := &domain.Service{SectorID: clinic.ID, Name: "Vaccinations", Mode: domain.ServiceModeQueue}
	require.NoError(t, services.Create(ctx, health))

	userA := &domain.User{Name: "Alice", PhoneNumber: "+15550001", PasswordHash: "x", Role: domain.RoleCitizen}
	require.NoError(t, users.Create(ctx, userA))
	userB := &domain.User{Name: "Bob", PhoneNumber: "+15550002", PasswordHash: "x", Role: domain.RoleCitizen}
	require.NoError(t, users.Create(ctx, userB))
	staff := &domain.User{Name: "Olivia", PhoneNumber: "+15550003", PasswordHash: "x", Role: domain.RoleOfficer}
	require.NoError(t, users.Create(ctx, staff))

	svc := NewQueueService(QueueDependencies{
		QueueRepo:   tickets,
		ServiceRepo: services,
		UserRepo:    users,
		Dispatcher:  events.NewInMemoryDispatcher(),
	})

	return &queueFixture{
		svc:      svc,
		users:    users,
		tickets:  tickets,
		services: services,
		permits:  permits,
		licenses: licenses,
		health:   health,
		citizenA: &auth.Principal{UserID: userA.ID, Role: domain.RoleCitizen, Name: userA.Name},
		citizenB: &auth.Principal{UserID: userB.ID, Role: domain.RoleCitizen, Name: userB.Name},
		officer:  &auth.Principal{UserID: staff.ID, Role: domain.RoleOfficer, Name: staff.Name},
		helpdesk: &auth.Principal{UserID: staff.ID, Role: domain.RoleHelpdesk, Name: staff.Name},
	}
}

func requireDomainCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %v", err)
	require.Equal(t, code, de.Code)
	require.Equal(t, status, de.HTTPStatus)
}

func TestTakeTicketAssignsSequentialPositions(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	first, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusWaiting, first.Status)
	require.EqualValues(t, 1, first.Position)
	require.Equal(t, f.permits.SectorID, first.SectorID)

	second, err := f.svc.TakeTicket(ctx, f.citizenB, f.permits.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, second.Position)

	list, err := f.svc.QueueList(ctx, f.permits.SectorID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)
}

func TestTakeTicketRejectsSecondActiveInSector(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	_, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	// same sector, even through a different service
	_, err = f.svc.TakeTicket(ctx, f.citizenA, f.licenses.ID)
	requireDomainCode(t, err, "CONFLICT", 409)

	// another sector is fine
	_, err = f.svc.TakeTicket(ctx, f.citizenA, f.health.ID)
	require.NoError(t, err)
}

func TestTakeTicketUnknownService(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)

	_, err := f.svc.TakeTicket(context.Background(), f.citizenA, "no-such-service")
	requireDomainCode(t, err, "NOT_FOUND", 404)
}

func TestTakeTicketAllowedAgainAfterTerminal(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	_, err = f.svc.CancelTicket(ctx, f.citizenA, ticket.ID)
	require.NoError(t, err)

	again, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, again.Position)
}

func TestMyStatus(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	none, err := f.svc.MyStatus(ctx, f.citizenA.UserID)
	require.NoError(t, err)
	require.Nil(t, none)

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	current, err := f.svc.MyStatus(ctx, f.citizenA.UserID)
	require.NoError(t, err)
	require.NotNil(t, current)
	require.Equal(t, ticket.ID, current.ID)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	called, err := f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusCalled)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusCalled, called.Status)
	require.NotNil(t, called.ServedBy)
	require.Equal(t, f.officer.UserID, *called.ServedBy)

	serving, err := f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusServing)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusServing, serving.Status)

	done, err := f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusCompleted, done.Status)

	_, err = f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusCalled)
	requireDomainCode(t, err, "INVALID_TRANSITION", 422)
}

func TestUpdateStatusRejectsSkippedStates(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	// WAITING cannot jump straight to SERVING or COMPLETED
	_, err = f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusServing)
	requireDomainCode(t, err, "INVALID_TRANSITION", 422)
	_, err = f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusCompleted)
	requireDomainCode(t, err, "INVALID_TRANSITION", 422)
}

func TestUpdateStatusAfterCancel(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	_, err = f.svc.CancelTicket(ctx, f.citizenA, ticket.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusCalled)
	requireDomainCode(t, err, "INVALID_TRANSITION", 422)
}

func TestCancelTicketOwnership(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelTicket(ctx, f.citizenB, ticket.ID)
	requireDomainCode(t, err, "FORBIDDEN", 403)

	cancelled, err := f.svc.CancelTicket(ctx, f.citizenA, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusCancelled, cancelled.Status)
}

func TestCancelTicketByStaff(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelTicket(ctx, f.officer, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusCancelled, cancelled.Status)
}

func TestCancelServingTicketRejected(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusCalled)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.officer, ticket.ID, domain.QueueStatusServing)
	require.NoError(t, err)

	_, err = f.svc.CancelTicket(ctx, f.citizenA, ticket.ID)
	requireDomainCode(t, err, "INVALID_TRANSITION", 422)
}

func TestForwardTicket(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	replacement, err := f.svc.ForwardTicket(ctx, f.officer, ticket.ID, f.health.ID)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusWaiting, replacement.Status)
	require.Equal(t, f.health.ID, replacement.ServiceID)
	require.Equal(t, f.health.SectorID, replacement.SectorID)
	require.Equal(t, ticket.UserID, replacement.UserID)
	require.Equal(t, ticket.CreatedAt, replacement.CreatedAt)

	original, err := f.svc.GetTicket(ctx, f.officer, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusForwarded, original.Status)
	require.NotNil(t, original.ForwardedTo)
	require.Equal(t, f.health.ID, *original.ForwardedTo)
}

func TestForwardTicketToSameQueue(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	_, err = f.svc.ForwardTicket(ctx, f.officer, ticket.ID, f.permits.ID)
	requireDomainCode(t, err, "VALIDATION_FAILED", 400)
}

func TestForwardTicketTerminalRejected(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	_, err = f.svc.CancelTicket(ctx, f.citizenA, ticket.ID)
	require.NoError(t, err)

	_, err = f.svc.ForwardTicket(ctx, f.officer, ticket.ID, f.health.ID)
	requireDomainCode(t, err, "INVALID_TRANSITION", 422)
}

func TestForwardTicketUnknownTarget(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	_, err = f.svc.ForwardTicket(ctx, f.officer, ticket.ID, "no-such-service")
	requireDomainCode(t, err, "NOT_FOUND", 404)
}

func TestRegisterWalkInExistingPhone(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.RegisterWalkIn(ctx, f.helpdesk, WalkInInput{
		PhoneNumber: "+15550001",
		ServiceID:   f.permits.ID,
	})
	require.NoError(t, err)
	require.Equal(t, f.citizenA.UserID, ticket.UserID)
	require.Equal(t, domain.QueueStatusWaiting, ticket.Status)
}

func TestRegisterWalkInCreatesCitizen(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.RegisterWalkIn(ctx, f.helpdesk, WalkInInput{
		Name:        "Walk In Wanda",
		PhoneNumber: "+15559999",
		ServiceID:   f.permits.ID,
	})
	require.NoError(t, err)

	created, err := f.users.GetByPhone(ctx, "+15559999")
	require.NoError(t, err)
	require.Equal(t, domain.RoleCitizen, created.Role)
	require.Equal(t, created.ID, ticket.UserID)
	require.NotEmpty(t, created.PasswordHash)
}

func TestRegisterWalkInValidation(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterWalkIn(ctx, f.helpdesk, WalkInInput{ServiceID: f.permits.ID})
	requireDomainCode(t, err, "VALIDATION_FAILED", 400)

	// unknown phone without a name cannot be registered
	_, err = f.svc.RegisterWalkIn(ctx, f.helpdesk, WalkInInput{
		PhoneNumber: "+15558888",
		ServiceID:   f.permits.ID,
	})
	requireDomainCode(t, err, "VALIDATION_FAILED", 400)
}

// contendedQueueRepo simulates a queue whose position allocation keeps losing
// the race even after the store-level retries.
type contendedQueueRepo struct {
	repository.QueueRepository
}

func positionViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "queue_tickets_service_position_key"}
}

func (r *contendedQueueRepo) CreateWithPosition(context.Context, *domain.QueueTicket) error {
	return positionViolation()
}

func (r *contendedQueueRepo) Forward(context.Context, string, domain.QueueStatus, string, *domain.QueueTicket) (bool, error) {
	return false, positionViolation()
}

func TestBusyQueueSurfacesConflictNotInternalError(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	contended := NewQueueService(QueueDependencies{
		QueueRepo:   &contendedQueueRepo{QueueRepository: f.tickets},
		ServiceRepo: f.services,
		UserRepo:    f.users,
	})

	_, err = contended.TakeTicket(ctx, f.citizenB, f.permits.ID)
	requireDomainCode(t, err, "CONFLICT", 409)

	_, err = contended.ForwardTicket(ctx, f.officer, ticket.ID, f.health.ID)
	requireDomainCode(t, err, "CONFLICT", 409)
}

func TestGetTicketVisibility(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)

	_, err = f.svc.GetTicket(ctx, f.citizenA, ticket.ID)
	require.NoError(t, err)

	_, err = f.svc.GetTicket(ctx, f.officer, ticket.ID)
	require.NoError(t, err)

	// other citizens see nothing, not a forbidden hint
	_, err = f.svc.GetTicket(ctx, f.citizenB, ticket.ID)
	requireDomainCode(t, err, "NOT_FOUND", 404)
}

func TestSectorHistoryOnlyTerminal(t *testing.T) {
	t.Parallel()
	f := newQueueFixture(t)
	ctx := context.Background()

	open, err := f.svc.TakeTicket(ctx, f.citizenA, f.permits.ID)
	require.NoError(t, err)
	closed, err := f.svc.TakeTicket(ctx, f.citizenB, f.permits.ID)
	require.NoError(t, err)
	_, err = f.svc.CancelTicket(ctx, f.citizenB, closed.ID)
	require.NoError(t, err)

	history, err := f.svc.SectorHistory(ctx, f.permits.SectorID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, closed.ID, history[0].ID)

	active, err := f.svc.QueueList(ctx, f.permits.SectorID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, open.ID, active[0].ID)
}
