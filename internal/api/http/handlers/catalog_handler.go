package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/api/dto"
	"github.com/civigo/citizen-portal/internal/service"
	apperrors "github.com/civigo/citizen-portal/pkg/util"
)

// CatalogHandler exposes the sector and service catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// ListSectors handles GET /services/sectors (public).
func (h *CatalogHandler) ListSectors(c *fiber.Ctx) error {
	sectors, err := h.catalog.ListSectors(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SectorResponse, 0, len(sectors))
	for i := range sectors {
		items = append(items, dto.NewSectorResponse(&sectors[i].Sector, sectors[i].Services))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateSector handles POST /services/sectors.
func (h *CatalogHandler) CreateSector(c *fiber.Ctx) error {
	var req dto.SectorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sector, err := h.catalog.CreateSector(c.Context(), service.SectorInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSectorResponse(sector, nil)})
}

// UpdateSector handles PATCH /services/sectors/:id.
func (h *CatalogHandler) UpdateSector(c *fiber.Ctx) error {
	var req dto.SectorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sector, err := h.catalog.UpdateSector(c.Context(), c.Params("id"), service.SectorInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSectorResponse(sector, nil)})
}

// DeleteSector handles DELETE /services/sectors/:id.
func (h *CatalogHandler) DeleteSector(c *fiber.Ctx) error {
	if err := h.catalog.DeleteSector(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "sector deleted"})
}

// GetService handles GET /services/:serviceId.
func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	svc, err := h.catalog.GetService(c.Context(), c.Params("serviceId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceResponse(svc)})
}

// CreateService handles POST /services/services.
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	svc, err := h.catalog.CreateService(c.Context(), service.ServiceInput{
		SectorID:     req.SectorID,
		Name:         req.Name,
		Description:  req.Description,
		Mode:         req.Mode,
		Availability: req.Availability,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceResponse(svc)})
}

// UpdateService handles PATCH /services/services/:id.
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	svc, err := h.catalog.UpdateService(c.Context(), c.Params("id"), service.ServiceInput{
		SectorID:     req.SectorID,
		Name:         req.Name,
		Description:  req.Description,
		Mode:         req.Mode,
		Availability: req.Availability,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceResponse(svc)})
}

// DeleteService handles DELETE /services/services/:id.
func (h *CatalogHandler) DeleteService(c *fiber.Ctx) error {
	if err := h.catalog.DeleteService(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "service deleted"})
}
