package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// newTestApp registers the order routes behind a middleware that forges
// the jwt token locals from an X-User-ID header, standing in for the jwt
// middleware the server installs.
func newTestApp(t *testing.T) (*fiber.App, *fixture) {
	t.Helper()
	f := newFixture(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-User-ID"); raw != "" {
			id, _ := strconv.Atoi(raw)
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": float64(id)}})
		}
		return c.Next()
	})
	NewHandler(f.svc, nil).RegisterProtectedRoutes(app)
	return app, f
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, userID int, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.Itoa(userID))
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func createTestOrder(t *testing.T, app *fiber.App, userID int) Order {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", userID, fiber.Map{
		"items":             []fiber.Map{{"productId": 1, "quantity": 2}},
		"shippingAddressId": 1,
	})
	if status != http.StatusCreated {
		t.Fatalf("create order: status %d, body %s", status, env.Error)
	}
	var ord Order
	if err := json.Unmarshal(env.Data, &ord); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	return ord
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	ord := createTestOrder(t, app, buyerID)
	if ord.Total != 180 {
		t.Errorf("expected total 180, got %v", ord.Total)
	}
	if ord.Number == "" {
		t.Error("expected an order number")
	}
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", 0, fiber.Map{
		"items":             []fiber.Map{{"productId": 1, "quantity": 1}},
		"shippingAddressId": 1,
	})
	if status != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %s", status, env.Code)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", buyerID, fiber.Map{
		"items": []fiber.Map{},
	})
	if status != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d %s", status, env.Code)
	}

	status, env = doJSON(t, app, http.MethodPost, "/api/v1/orders", buyerID, fiber.Map{
		"items":             []fiber.Map{{"productId": 1, "quantity": 0}},
		"shippingAddressId": 1,
	})
	if status != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("zero quantity: expected 400 VALIDATION_ERROR, got %d %s", status, env.Code)
	}
}

func TestListOrdersRejectsUnknownStatusFilter(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodGet, "/api/v1/orders?status=BOGUS", buyerID, nil)
	if status != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d %s", status, env.Code)
	}
}

func TestUpdateStatusEndpointRejectsUnknownValue(t *testing.T) {
	app, _ := newTestApp(t)
	ord := createTestOrder(t, app, buyerID)

	status, env := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", ord.ID), buyerID, fiber.Map{
		"status": "FOO",
	})
	if status != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d %s", status, env.Code)
	}
}

func TestCreateOrderInsufficientStockEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", buyerID, fiber.Map{
		"items":             []fiber.Map{{"productId": 1, "quantity": 6}},
		"shippingAddressId": 1,
	})
	if status != http.StatusConflict || env.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("expected 409 INSUFFICIENT_STOCK, got %d %s", status, env.Code)
	}
}

func TestGetOrderForbiddenEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	ord := createTestOrder(t, app, buyerID)

	status, env := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", ord.ID), otherID, nil)
	if status != http.StatusForbidden || env.Code != "FORBIDDEN" {
		t.Fatalf("expected 403 FORBIDDEN, got %d %s", status, env.Code)
	}

	status, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", ord.ID), buyerID, nil)
	if status != http.StatusOK {
		t.Fatalf("owner read: status %d", status)
	}
}

func TestGetOrderNotFoundEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodGet, "/api/v1/orders/999", buyerID, nil)
	if status != http.StatusNotFound || env.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %s", status, env.Code)
	}
}

func TestCancelOrderEndpoint(t *testing.T) {
	app, f := newTestApp(t)
	ord := createTestOrder(t, app, buyerID)

	status, env := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", ord.ID), buyerID, nil)
	if status != http.StatusOK {
		t.Fatalf("cancel: status %d %s", status, env.Error)
	}
	var cancelled Order
	if err := json.Unmarshal(env.Data, &cancelled); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if got := f.stockOf(t, 1); got != 5 {
		t.Errorf("expected stock restored, got %d", got)
	}

	status, env = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", ord.ID), buyerID, nil)
	if status != http.StatusConflict || env.Code != "INVALID_STATE" {
		t.Fatalf("second cancel: expected 409 INVALID_STATE, got %d %s", status, env.Code)
	}
}

func TestUpdateStatusEndpointRejectsBadTransition(t *testing.T) {
	app, _ := newTestApp(t)
	ord := createTestOrder(t, app, buyerID)

	status, env := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", ord.ID), buyerID, fiber.Map{
		"status": "DELIVERED",
	})
	if status != http.StatusConflict || env.Code != "INVALID_TRANSITION" {
		t.Fatalf("expected 409 INVALID_TRANSITION, got %d %s", status, env.Code)
	}

	status, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", ord.ID), buyerID, fiber.Map{
		"status": "CONFIRMED",
	})
	if status != http.StatusOK {
		t.Fatalf("confirm: status %d", status)
	}
}

func TestCheckoutEndpointEmptyCart(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders/checkout", buyerID, fiber.Map{
		"shippingAddressId": 1,
	})
	if status != http.StatusUnprocessableEntity || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d %s", status, env.Code)
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	createTestOrder(t, app, buyerID)

	status, env := doJSON(t, app, http.MethodGet, "/api/v1/orders?status=PENDING&page=1&limit=10", buyerID, nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d %s", status, env.Error)
	}
	var page struct {
		Orders []Order `json:"orders"`
		Total  int     `json:"total"`
		Page   int     `json:"page"`
		Limit  int     `json:"limit"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Orders) != 1 {
		t.Fatalf("expected one order, got total %d len %d", page.Total, len(page.Orders))
	}
	if page.Page != 1 || page.Limit != 10 {
		t.Fatalf("expected echoed pagination, got page %d limit %d", page.Page, page.Limit)
	}
}

func TestUpdateItemStatusEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	ord := createTestOrder(t, app, buyerID)
	itemID := ord.Items[0].ID

	status, env := doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/orders/%d/items/%d/status", ord.ID, itemID), buyerID, fiber.Map{
			"status": "CONFIRMED",
		})
	if status != http.StatusForbidden || env.Code != "FORBIDDEN" {
		t.Fatalf("buyer item update: expected 403 FORBIDDEN, got %d %s", status, env.Code)
	}

	status, env = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/orders/%d/items/%d/status", ord.ID, itemID), vendorID, fiber.Map{
			"status":       "CONFIRMED",
			"carrier":      "Kerry Express",
			"trackingCode": "KEX123456",
		})
	if status != http.StatusOK {
		t.Fatalf("vendor item update: status %d %s", status, env.Error)
	}
}
