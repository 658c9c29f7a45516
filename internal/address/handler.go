package address

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tanakrit-dev/marketplace-backend/internal/user"
)

// Handler delegates address operations to the address service.

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/addresses", h.listAddresses)
	app.Post("/api/v1/addresses", h.createAddress)
}

func (h *Handler) listAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	addrs, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.JSON(fiber.Map{"success": true, "data": addrs})
}

type addressCreateRequest struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
}

func (h *Handler) createAddress(c *fiber.Ctx) error {
	payload := new(addressCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Recipient == "" || payload.Line1 == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "recipient and line1 are required", "code": "VALIDATION_ERROR"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	created, err := h.service.Create(userID, Address{
		Recipient: payload.Recipient,
		Phone:     payload.Phone,
		Line1:     payload.Line1,
		Line2:     payload.Line2,
		City:      payload.City,
		Postcode:  payload.Postcode,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}
