package main

import (
	"net/http"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/middleware"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type directOrderRequest struct {
	Items             []cartItemRequest `json:"items"`
	ShippingAddressID string            `json:"shipping_address_id"`
	CouponCode        string            `json:"coupon_code"`
	IdempotencyKey    string            `json:"idempotency_key"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func registerOrderRoutes(g *echo.Group, cs *services.CheckoutService, os *services.OrderService) {
	p := g.Group("/orders")
	p.Use(middleware.JWTMiddleware())

	// Direct order RPC: pricing, stock, and ledger in one server-side
	// transaction, no hosted payment page.
	p.POST("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthenticated"})
		}

		req := new(directOrderRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request body"})
		}

		lines, err := parseLines(req.Items)
		if err != nil {
			return err
		}

		addressID, err := uuid.Parse(req.ShippingAddressID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid shipping_address_id"})
		}

		order, err := cs.DirectOrder(c.Request().Context(), cl.UserID, services.DirectOrderInput{
			Lines:             lines,
			ShippingAddressID: addressID,
			CouponCode:        req.CouponCode,
			IdempotencyKey:    req.IdempotencyKey,
			Email:             cl.Email,
		})
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"success":      true,
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
		})
	})

	p.GET("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		orders, err := os.ListByUser(c.Request().Context(), cl.UserID)
		if err != nil {
			return writeError(c, err)
		}
		if orders == nil {
			orders = []model.Order{}
		}
		return c.JSON(http.StatusOK, orders)
	})

	p.GET("/:id", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}

		requester := &cl.UserID
		if cl.Role == "admin" {
			requester = nil
		}
		order, err := os.GetByID(c.Request().Context(), orderID, requester)
		if err != nil {
			return writeError(c, err)
		}
		if order == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusOK, order)
	})

	// Audited status transition, back-office only.
	p.POST("/:id/status", middleware.AdminOnly(func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}

		req := new(updateStatusRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}

		if err := os.UpdateStatus(c.Request().Context(), orderID, model.OrderStatus(req.Status), "admin:"+cl.Email); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": req.Status})
	}))
}
