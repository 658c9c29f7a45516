package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tanakrit-dev/marketplace-backend/internal/user"
)

// Handler delegates cart operations to the cart service.

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Get("/api/v1/cart/validate", h.validateCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items/:itemId<[0-9]+>", h.updateItem)
	app.Delete("/api/v1/cart/items/:itemId<[0-9]+>", h.removeItem)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	crt, err := h.service.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.JSON(fiber.Map{"success": true, "data": crt})
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}
	if err := h.service.Clear(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"cleared": true}})
}

func (h *Handler) validateCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	crt, problems, err := h.service.ValidateForCheckout(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"cart":   crt,
		"valid":  len(problems) == 0,
		"errors": problems,
	}})
}

type addItemRequest struct {
	ProductID int  `json:"productId"`
	VariantID *int `json:"variantId"`
	Quantity  int  `json:"quantity"`
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.ProductID <= 0 || payload.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "productId and a positive quantity are required", "code": "VALIDATION_ERROR"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	crt, err := h.service.AddItem(userID, payload.ProductID, payload.VariantID, payload.Quantity)
	if err != nil {
		return respondCartError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": crt})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	itemID, _ := strconv.Atoi(c.Params("itemId"))
	payload := new(updateItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	crt, err := h.service.UpdateItemQuantity(userID, itemID, payload.Quantity)
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": crt})
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	itemID, _ := strconv.Atoi(c.Params("itemId"))
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
	}

	crt, err := h.service.RemoveItem(userID, itemID)
	if err != nil {
		return respondCartError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": crt})
}

func respondCartError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrProductNotFound, ErrVariantNotFound, ErrItemNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "NOT_FOUND"})
	case ErrProductInactive:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INVALID_STATE"})
	case ErrInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INSUFFICIENT_STOCK"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
}
