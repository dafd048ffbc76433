package main

import (
	"errors"
	"net/http"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/services"

	"github.com/labstack/echo/v4"
)

func registerPaymentRoutes(g *echo.Group, ps *services.PaymentService) {
	p := g.Group("/payments")

	// Provider-signed notification. Must stay public; authenticity
	// comes from the signature, not a bearer token. 500 asks Midtrans
	// to redeliver; the idempotency gate makes redelivery safe.
	p.POST("/webhook", func(c echo.Context) error {
		var payload map[string]interface{}
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
		}

		err := ps.HandleNotification(c.Request().Context(), payload)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
		case errors.Is(err, checkout.ErrSignatureInvalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
		case errors.Is(err, services.ErrMalformedPayload),
			errors.Is(err, services.ErrAmountMismatch):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case checkout.IsValidation(err):
			// Business rejection (stock gone, coupon exhausted). Redelivery
			// cannot succeed, so acknowledge instead of asking for a retry.
			return c.JSON(http.StatusOK, echo.Map{"status": "rejected", "error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconciliation failed"})
		}
	})
}
