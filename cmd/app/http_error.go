package main

import (
	"errors"
	"net/http"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"

	"github.com/labstack/echo/v4"
)

// writeError maps the checkout error taxonomy onto HTTP responses.
// Validation failures carry their specific reason to the caller;
// anything else is a 500 with a generic body.
func writeError(c echo.Context, err error) error {
	var sku *checkout.InvalidSkuError
	var coupon *checkout.InvalidCouponError
	var stock *checkout.InsufficientStockError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingAddress):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &sku):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": sku.Error()})
	case errors.As(err, &coupon):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  coupon.Error(),
			"reason": string(coupon.Reason),
		})
	case errors.As(err, &stock):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":     stock.Error(),
			"shortfall": stock.Shortfall(),
		})
	case errors.Is(err, checkout.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
