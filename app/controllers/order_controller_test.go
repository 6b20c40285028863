package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

func newLookupTestApp(t *testing.T) (*fiber.App, *memOrderRepo) {
	t.Helper()
	repo := newMemOrderRepo()
	repository.SetGlobalFactory(repository.NewFactoryWithRepositories(&repository.Repositories{
		Order:   repo,
		Product: memProductRepo{},
	}))

	app := fiber.New()
	app.Get("/api/v1/orders/lookup", HandleOrderLookup)
	return app, repo
}

func TestHandleOrderLookupReturnsItemsWithoutShippingDetails(t *testing.T) {
	app, repo := newLookupTestApp(t)
	order := &models.Order{
		Status:         orderstatus.CONFIRMED,
		OrderNumber:    "SF-1001",
		TotalCents:     4498,
		Currency:       "EUR",
		ShippingName:   "Jo Doe",
		ShippingStreet: "Main St 1",
		Items: []models.OrderItem{
			{ProductName: "Blue Mug", Quantity: 2, UnitPriceCents: 1999},
			{ProductName: "Sticker Pack", Quantity: 1, UnitPriceCents: 500},
		},
	}
	require.NoError(t, repo.Create(order))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/lookup?uuid="+order.UUID+"&number=SF-1001", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "SF-1001", body["order_number"])
	assert.Equal(t, orderstatus.CONFIRMED, body["status"])

	items, ok := body["items"].([]any)
	require.True(t, ok, "response must carry an items array")
	require.Len(t, items, 2)
	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Blue Mug", first["product_name"])
	assert.Equal(t, float64(2), first["quantity"])
	assert.Equal(t, float64(1999), first["unit_price_cents"])

	// The shipping snapshot stays private.
	assert.NotContains(t, string(raw), "Jo Doe")
	assert.NotContains(t, string(raw), "Main St 1")
}

func TestHandleOrderLookupRequiresBothIdentifiers(t *testing.T) {
	app, repo := newLookupTestApp(t)
	order := &models.Order{Status: orderstatus.PENDING, OrderNumber: "SF-1002"}
	require.NoError(t, repo.Create(order))

	for _, target := range []string{
		"/api/v1/orders/lookup?uuid=" + order.UUID,
		"/api/v1/orders/lookup?number=SF-1002",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/orders/lookup?uuid="+order.UUID+"&number=SF-9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
