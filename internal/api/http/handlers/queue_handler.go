package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/api/dto"
	"github.com/civigo/citizen-portal/internal/auth"
	"github.com/civigo/citizen-portal/internal/domain"
	"github.com/civigo/citizen-portal/internal/service"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// QueueHandler exposes the queue ticket lifecycle.
type QueueHandler struct {
	queue *service.QueueService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{queue: queueService}
}

// Take handles POST /queue/take (and the legacy POST /queue/).
func (h *QueueHandler) Take(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TakeTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceID == "" {
		return apperrors.NewValidationError("service_id required", nil)
	}

	ticket, err := h.queue.TakeTicket(c.Context(), principal, req.ServiceID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// MyStatus handles GET /queue/my-status (and the legacy GET /queue/active).
// No active ticket is a normal answer, not an error.
func (h *QueueHandler) MyStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.MyStatus(c.Context(), principal.UserID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// MyHistory handles GET /queue/my-history.
func (h *QueueHandler) MyHistory(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.queue.MyHistory(c.Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// SectorHistory handles GET /queue/history/:sectorId.
func (h *QueueHandler) SectorHistory(c *fiber.Ctx) error {
	tickets, err := h.queue.SectorHistory(c.Context(), c.Params("sectorId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// List handles GET /queue/list/:sectorId. Tickets come back in serving order.
func (h *QueueHandler) List(c *fiber.Ctx) error {
	tickets, err := h.queue.QueueList(c.Context(), c.Params("sectorId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// UpdateStatus handles PATCH /queue/status/:queueId.
func (h *QueueHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateQueueStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	switch req.Status {
	case domain.QueueStatusCalled, domain.QueueStatusServing, domain.QueueStatusCompleted,
		domain.QueueStatusCancelled, domain.QueueStatusNoShow:
	default:
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	ticket, err := h.queue.UpdateStatus(c.Context(), principal, c.Params("queueId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Forward handles POST /queue/forward/:queueId.
func (h *QueueHandler) Forward(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ForwardTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TargetServiceID == "" {
		return apperrors.NewValidationError("target_service_id required", nil)
	}

	ticket, err := h.queue.ForwardTicket(c.Context(), principal, c.Params("queueId"), req.TargetServiceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Cancel handles DELETE /queue/:queueId.
func (h *QueueHandler) Cancel(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.CancelTicket(c.Context(), principal, c.Params("queueId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// RegisterWalkIn handles POST /queue/register-walkin.
func (h *QueueHandler) RegisterWalkIn(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RegisterWalkInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceID == "" {
		return apperrors.NewValidationError("service_id required", nil)
	}

	ticket, err := h.queue.RegisterWalkIn(c.Context(), principal, service.WalkInInput{
		UserID:      req.UserID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		ServiceID:   req.ServiceID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetByID handles GET /queue/:queueId.
func (h *QueueHandler) GetByID(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.GetTicket(c.Context(), principal, c.Params("queueId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
