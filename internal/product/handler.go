package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tanakrit-dev/marketplace-backend/internal/shop"
	"github.com/tanakrit-dev/marketplace-backend/internal/user"
)

// Handler exposes catalog routes. Write operations require the caller to
// own the shop the product belongs to.

type Handler struct {
	service     *Service
	shopService *shop.Service
}

func NewHandler(s *Service, shopService *shop.Service) *Handler {
	return &Handler{service: s, shopService: shopService}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.listProducts)
	app.Get("/api/v1/products/:id<[0-9]+>", h.getProduct)
	app.Get("/api/v1/products/:id<[0-9]+>/variants", h.listVariants)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products", h.createProduct)
	app.Patch("/api/v1/products/:id<[0-9]+>", h.updateProduct)
	app.Post("/api/v1/products/:id<[0-9]+>/variants", h.createVariant)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.JSON(fiber.Map{"success": true, "data": products})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	p, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "product not found", "code": "NOT_FOUND"})
	}
	return c.JSON(fiber.Map{"success": true, "data": p})
}

func (h *Handler) listVariants(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	variants, err := h.service.ListVariants(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "product not found", "code": "NOT_FOUND"})
	}
	return c.JSON(fiber.Map{"success": true, "data": variants})
}

type productRequest struct {
	Name           string  `json:"productName"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	DiscountPct    float64 `json:"discountPct"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	Stock          int     `json:"stock"`
	Status         string  `json:"status"`
	Image          *string `json:"image"`
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Name == "" || payload.Price < 0 || payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "productName required, price and stock must be non-negative", "code": "VALIDATION_ERROR"})
	}

	ownShop, ok := h.requireShop(c)
	if !ok {
		return nil
	}

	created, err := h.service.Create(Product{
		ShopID:         ownShop.ID,
		Name:           payload.Name,
		Description:    payload.Description,
		Price:          payload.Price,
		DiscountPct:    payload.DiscountPct,
		DeliveryCharge: payload.DeliveryCharge,
		Stock:          payload.Stock,
		Status:         payload.Status,
		Image:          payload.Image,
	})
	if err != nil {
		if err == ErrInvalidStatus {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "product not found", "code": "NOT_FOUND"})
	}

	ownShop, ok := h.requireShop(c)
	if !ok {
		return nil
	}
	if existing.ShopID != ownShop.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "you do not own this product", "code": "FORBIDDEN"})
	}

	payload := productRequest{
		Name:           existing.Name,
		Description:    existing.Description,
		Price:          existing.Price,
		DiscountPct:    existing.DiscountPct,
		DeliveryCharge: existing.DeliveryCharge,
		Stock:          existing.Stock,
		Status:         existing.Status,
		Image:          existing.Image,
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Price < 0 || payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "price and stock must be non-negative", "code": "VALIDATION_ERROR"})
	}

	existing.Name = payload.Name
	existing.Description = payload.Description
	existing.Price = payload.Price
	existing.DiscountPct = payload.DiscountPct
	existing.DeliveryCharge = payload.DeliveryCharge
	existing.Stock = payload.Stock
	existing.Status = payload.Status
	existing.Image = payload.Image

	updated, err := h.service.Update(id, existing)
	if err != nil {
		if err == ErrInvalidStatus {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

type variantRequest struct {
	Name      string  `json:"variantName"`
	Value     string  `json:"variantValue"`
	PriceDiff float64 `json:"priceDiff"`
	Stock     int     `json:"stock"`
}

func (h *Handler) createVariant(c *fiber.Ctx) error {
	id, _ := strconv.Atoi(c.Params("id"))
	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "product not found", "code": "NOT_FOUND"})
	}

	ownShop, ok := h.requireShop(c)
	if !ok {
		return nil
	}
	if existing.ShopID != ownShop.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "you do not own this product", "code": "FORBIDDEN"})
	}

	payload := new(variantRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "VALIDATION_ERROR"})
	}
	if payload.Name == "" || payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "variantName required, stock must be non-negative", "code": "VALIDATION_ERROR"})
	}

	created, err := h.service.CreateVariant(Variant{
		ProductID: id,
		Name:      payload.Name,
		Value:     payload.Value,
		PriceDiff: payload.PriceDiff,
		Stock:     payload.Stock,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error(), "code": "INTERNAL"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

// requireShop resolves the caller's shop, writing the error response
// itself when the caller is unauthenticated or owns no shop.
func (h *Handler) requireShop(c *fiber.Ctx) (shop.Shop, bool) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "unauthorized", "code": "UNAUTHORIZED"})
		return shop.Shop{}, false
	}
	ownShop, err := h.shopService.GetByOwner(userID)
	if err != nil {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "you do not own a shop", "code": "FORBIDDEN"})
		return shop.Shop{}, false
	}
	return ownShop, true
}
