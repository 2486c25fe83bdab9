package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/civigo/citizen-portal/internal/auth"
	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/events"
	"github.com/civigo/citizen-portal/internal/repository"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// QueueService coordinates the ticket lifecycle: issuance, status
// transitions, forwarding, cancellation and walk-in registration.
type QueueService struct {
	tickets    repository.QueueRepository
	services   repository.ServiceRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	board      *NowServingBoard
}

// QueueDependencies bundles requirements for the queue service.
type QueueDependencies struct {
	QueueRepo   repository.QueueRepository
	ServiceRepo repository.ServiceRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Board       *NowServingBoard
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	return &QueueService{
		tickets:    deps.QueueRepo,
		services:   deps.ServiceRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		board:      deps.Board,
	}
}

// TakeTicket issues a WAITING ticket for the caller in the service's queue.
// A user holds at most one active ticket per sector; a second take conflicts.
func (s *QueueService) TakeTicket(ctx context.Context, actor *auth.Principal, serviceID string) (*domain.QueueTicket, error) {
	return s.take(ctx, actor, actor.UserID, serviceID, false)
}

// WalkInInput identifies the citizen a staff member is registering. Either an
// existing user id or an inline identity (name + phone) must be supplied.
type WalkInInput struct {
	UserID      *string
	Name        string
	PhoneNumber string
	ServiceID   string
}

// RegisterWalkIn issues a ticket on behalf of a citizen without their own
// session. Unknown phone numbers get a CITIZEN record with a throwaway
// password; the citizen can claim it later through support.
func (s *QueueService) RegisterWalkIn(ctx context.Context, staff *auth.Principal, input WalkInInput) (*domain.QueueTicket, error) {
	var userID string
	switch {
	case input.UserID != nil && *input.UserID != "":
		user, err := s.users.GetByID(ctx, *input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", nil)
			}
			return nil, apperrors.MapError(err)
		}
		userID = user.ID
	case input.PhoneNumber != "":
		user, err := s.users.GetByPhone(ctx, input.PhoneNumber)
		if err == nil {
			userID = user.ID
			break
		}
		if !errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		if input.Name == "" {
			return nil, apperrors.NewValidationError("name is required for unregistered walk-ins", nil)
		}
		// Throwaway credential; the citizen claims the account through
		// support later, so the default cost is fine here.
		hash, err := auth.HashPassword(uuid.NewString(), 0)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		created := &domain.User{
			Name:         input.Name,
			PhoneNumber:  input.PhoneNumber,
			PasswordHash: hash,
			Role:         domain.RoleCitizen,
		}
		if err := s.users.Create(ctx, created); err != nil {
			return nil, apperrors.MapError(err)
		}
		userID = created.ID
	default:
		return nil, apperrors.NewValidationError("user_id or phone_number required", nil)
	}

	return s.take(ctx, staff, userID, input.ServiceID, true)
}

func (s *QueueService) take(ctx context.Context, actor *auth.Principal, userID, serviceID string, walkIn bool) (*domain.QueueTicket, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", nil)
		}
		return nil, apperrors.MapError(err)
	}

	active, err := s.tickets.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, t := range active {
		if t.SectorID == svc.SectorID {
			return nil, apperrors.NewConflict("an active ticket already exists for this sector",
				map[string]any{"ticket_id": t.ID})
		}
	}

	ticket := &domain.QueueTicket{
		UserID:    userID,
		ServiceID: svc.ID,
		SectorID:  svc.SectorID,
		Status:    domain.QueueStatusWaiting,
	}
	if err := s.tickets.CreateWithPosition(ctx, ticket); err != nil {
		// The partial unique index catches takes racing past the pre-check.
		if repository.IsUniqueViolation(err, "queue_tickets_active_user_sector_key") {
			return nil, apperrors.NewConflict("an active ticket already exists for this sector", nil)
		}
		// Position allocation is retried in the store; an escaped violation
		// means sustained contention, not a broken server.
		if repository.IsUniqueViolation(err, "queue_tickets_service_position_key") {
			return nil, apperrors.NewConflict("queue is busy, try again", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.TicketCreatedPayload{
			ServiceID: ticket.ServiceID,
			SectorID:  ticket.SectorID,
			Position:  ticket.Position,
			WalkIn:    walkIn,
		},
	})
	return ticket, nil
}

// MyStatus returns the caller's current active ticket, or nil when none.
// Holding no ticket is a normal state, not an error.
func (s *QueueService) MyStatus(ctx context.Context, userID string) (*domain.QueueTicket, error) {
	active, err := s.tickets.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

// MyHistory returns the caller's past and present tickets, newest first.
func (s *QueueService) MyHistory(ctx context.Context, userID string) ([]domain.QueueTicket, error) {
	tickets, err := s.tickets.ListByUser(ctx, userID, 100)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// SectorHistory returns terminated tickets for a sector, newest first.
func (s *QueueService) SectorHistory(ctx context.Context, sectorID string) ([]domain.QueueTicket, error) {
	tickets, err := s.tickets.ListHistoryBySector(ctx, sectorID, 200)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// QueueList returns all active tickets for a sector in serving order
// (ascending position).
func (s *QueueService) QueueList(ctx context.Context, sectorID string) ([]domain.QueueTicket, error) {
	tickets, err := s.tickets.ListActiveBySector(ctx, sectorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus applies a staff-driven transition. Illegal moves are rejected,
// including ones that only became illegal through a concurrent update: the
// final check runs as a compare-and-swap against the store.
func (s *QueueService) UpdateStatus(ctx context.Context, staff *auth.Principal, ticketID string, next domain.QueueStatus) (*domain.QueueTicket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, next) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot move ticket from %s to %s", ticket.Status, next), nil)
	}

	servedBy := staff.UserID
	ok, err := s.tickets.UpdateStatusCAS(ctx, ticket.ID, ticket.Status, next, &servedBy)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewInvalidTransition("ticket status changed concurrently", nil)
	}

	oldStatus := ticket.Status
	ticket.Status = next
	ticket.ServedBy = &servedBy

	if next == domain.QueueStatusCalled || next == domain.QueueStatusServing {
		s.board.Set(ctx, ticket.SectorID, ticket.Position)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
		Actor:    events.Actor{UserID: staff.UserID, Role: staff.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return ticket, nil
}

// ForwardTicket moves a WAITING or CALLED ticket to another service's queue.
// The original record is stamped FORWARDED; the replacement starts WAITING in
// the target queue with a fresh position but keeps the original creation time
// for fairness.
func (s *QueueService) ForwardTicket(ctx context.Context, officer *auth.Principal, ticketID, targetServiceID string) (*domain.QueueTicket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.QueueStatusWaiting && ticket.Status != domain.QueueStatusCalled {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot forward ticket in status %s", ticket.Status), nil)
	}
	if targetServiceID == ticket.ServiceID {
		return nil, apperrors.NewValidationError("ticket is already in that queue", nil)
	}

	target, err := s.services.GetByID(ctx, targetServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("target service", nil)
		}
		return nil, apperrors.MapError(err)
	}

	replacement := &domain.QueueTicket{
		UserID:    ticket.UserID,
		ServiceID: target.ID,
		SectorID:  target.SectorID,
		CreatedAt: ticket.CreatedAt,
	}
	ok, err := s.tickets.Forward(ctx, ticket.ID, ticket.Status, officer.UserID, replacement)
	if err != nil {
		if repository.IsUniqueViolation(err, "queue_tickets_active_user_sector_key") {
			return nil, apperrors.NewConflict("user already holds an active ticket in the target sector", nil)
		}
		if repository.IsUniqueViolation(err, "queue_tickets_service_position_key") {
			return nil, apperrors.NewConflict("target queue is busy, try again", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewInvalidTransition("ticket status changed concurrently", nil)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketForwarded,
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
		Actor:    events.Actor{UserID: officer.UserID, Role: officer.Role},
		Payload: events.TicketForwardedPayload{
			FromServiceID: ticket.ServiceID,
			ToServiceID:   target.ID,
			NewTicketID:   replacement.ID,
			NewPosition:   replacement.Position,
		},
	})
	return replacement, nil
}

// CancelTicket terminates a ticket. The owner may cancel their own ticket;
// staff may cancel any. Terminal or SERVING tickets cannot be cancelled.
func (s *QueueService) CancelTicket(ctx context.Context, actor *auth.Principal, ticketID string) (*domain.QueueTicket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.UserID && !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("not the ticket owner")
	}
	if !domain.CanTransition(ticket.Status, domain.QueueStatusCancelled) {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot cancel ticket in status %s", ticket.Status), nil)
	}

	ok, err := s.tickets.UpdateStatusCAS(ctx, ticket.ID, ticket.Status, domain.QueueStatusCancelled, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewInvalidTransition("ticket status changed concurrently", nil)
	}

	oldStatus := ticket.Status
	ticket.Status = domain.QueueStatusCancelled
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: domain.QueueStatusCancelled,
		},
	})
	return ticket, nil
}

// GetTicket returns ticket detail for the owner or staff. Tickets invisible
// to the caller read as absent rather than forbidden.
func (s *QueueService) GetTicket(ctx context.Context, actor *auth.Principal, ticketID string) (*domain.QueueTicket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.UserID && !actor.Role.IsStaff() {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

func (s *QueueService) getTicket(ctx context.Context, ticketID string) (*domain.QueueTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *QueueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
