package shop

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tanakrit-dev/marketplace-backend/internal/user"
)

// Handler delegates shop operations to the shop service.

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/shops", h.createShop)
	app.Get("/api/v1/shops/me", h.getMyShop)
}

type shopCreateRequest struct {
	Name        string `json:"shopName"`
	Description string `json:"description"`
}

func (h *Handler) createShop(c *fiber.Ctx) error {
	payload := new(shopCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "shopName is required", "code": "VALIDATION_ERROR"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	created, err := h.service.Create(userID, payload.Name, payload.Description)
	if err != nil {
		switch err {
		case ErrShopExists:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "user already owns a shop", "code": "SHOP_EXISTS"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (h *Handler) getMyShop(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	s, err := h.service.GetByOwner(userID)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "shop not found", "code": "NOT_FOUND"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
		}
	}
	return c.JSON(fiber.Map{"success": true, "data": s})
}
