package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tanakrit-dev/marketplace-backend/internal/cache"
	"github.com/tanakrit-dev/marketplace-backend/internal/cart"
	"github.com/tanakrit-dev/marketplace-backend/internal/user"
)

type Handler struct {
	service *Service
	cache   *cache.OrderCache
}

// NewHandler wires the order routes. orderCache may be nil when Redis is
// not configured.
func NewHandler(s *Service, orderCache *cache.OrderCache) *Handler {
	return &Handler{service: s, cache: orderCache}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.createOrder)
	app.Post("/api/v1/orders/checkout", h.checkout)
	app.Get("/api/v1/orders", h.listOrders)
	app.Get("/api/v1/orders/:orderId<[0-9]+>", h.getOrder)
	app.Patch("/api/v1/orders/:orderId<[0-9]+>/status", h.updateStatus)
	app.Patch("/api/v1/orders/:orderId<[0-9]+>/payment", h.updatePayment)
	app.Post("/api/v1/orders/:orderId<[0-9]+>/cancel", h.cancelOrder)
	app.Patch("/api/v1/orders/:orderId<[0-9]+>/items/:orderItemId<[0-9]+>/status", h.updateItemStatus)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	payload := new(CreateInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if len(payload.Items) == 0 || payload.ShippingAddressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "items and shippingAddressId are required", "code": "VALIDATION_ERROR"})
	}

	ord, err := h.service.Create(userID, *payload)
	if err != nil {
		return respondOrderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": ord})
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	payload := new(CheckoutInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.ShippingAddressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "shippingAddressId is required", "code": "VALIDATION_ERROR"})
	}

	ord, err := h.service.Checkout(userID, *payload)
	if err != nil {
		return respondOrderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": ord})
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	f := ListFilter{
		Status:        Status(c.Query("status")),
		PaymentStatus: PaymentStatus(c.Query("paymentStatus")),
		StartDate:     c.Query("startDate"),
		EndDate:       c.Query("endDate"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 20),
	}
	orders, total, err := h.service.List(userID, f)
	if err != nil {
		return respondOrderError(c, err)
	}
	page, limit := normalizePage(f.Page, f.Limit)
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	}})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	orderID, _ := strconv.Atoi(c.Params("orderId"))

	var cached Order
	if h.cache.GetOrder(c.Context(), orderID, &cached) {
		if cached.UserID != userID {
			return respondOrderError(c, ErrForbidden)
		}
		return c.JSON(fiber.Map{"success": true, "data": cached})
	}

	ord, err := h.service.Get(userID, orderID)
	if err != nil {
		return respondOrderError(c, err)
	}
	h.cache.SetOrder(c.Context(), ord.ID, ord)
	return c.JSON(fiber.Map{"success": true, "data": ord})
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	orderID, _ := strconv.Atoi(c.Params("orderId"))
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "status is required", "code": "VALIDATION_ERROR"})
	}

	ord, err := h.service.UpdateStatus(userID, orderID, payload.Status)
	if err != nil {
		return respondOrderError(c, err)
	}
	h.cache.InvalidateOrder(c.Context(), orderID)
	return c.JSON(fiber.Map{"success": true, "data": ord})
}

type updatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod *string       `json:"paymentMethod"`
}

func (h *Handler) updatePayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	orderID, _ := strconv.Atoi(c.Params("orderId"))
	payload := new(updatePaymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.PaymentStatus == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "paymentStatus is required", "code": "VALIDATION_ERROR"})
	}

	ord, err := h.service.UpdatePayment(userID, orderID, payload.PaymentStatus, payload.PaymentMethod)
	if err != nil {
		return respondOrderError(c, err)
	}
	h.cache.InvalidateOrder(c.Context(), orderID)
	return c.JSON(fiber.Map{"success": true, "data": ord})
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	orderID, _ := strconv.Atoi(c.Params("orderId"))

	ord, err := h.service.Cancel(userID, orderID)
	if err != nil {
		return respondOrderError(c, err)
	}
	h.cache.InvalidateOrder(c.Context(), orderID)
	return c.JSON(fiber.Map{"success": true, "data": ord})
}

type updateItemStatusRequest struct {
	Status Status `json:"status"`
	TrackingInput
}

func (h *Handler) updateItemStatus(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respondUnauthorized(c)
	}
	orderID, _ := strconv.Atoi(c.Params("orderId"))
	itemID, _ := strconv.Atoi(c.Params("orderItemId"))
	payload := new(updateItemStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "status is required", "code": "VALIDATION_ERROR"})
	}

	ord, err := h.service.UpdateItemStatus(userID, orderID, itemID, payload.Status, payload.TrackingInput)
	if err != nil {
		return respondOrderError(c, err)
	}
	h.cache.InvalidateOrder(c.Context(), orderID)
	return c.JSON(fiber.Map{"success": true, "data": ord})
}

func respondUnauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
}

func respondOrderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, ErrAddressNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "FORBIDDEN"})
	case errors.Is(err, ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INVALID_TRANSITION"})
	case errors.Is(err, ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INVALID_STATE"})
	case errors.Is(err, ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INSUFFICIENT_STOCK"})
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrCartInvalid), errors.Is(err, cart.ErrEmptyCart):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
}
