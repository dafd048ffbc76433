package main

import (
	"net/http"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type applyCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func registerCouponRoutes(g *echo.Group, ps *services.PricingService) {
	p := g.Group("/coupons")

	// Validate-only: reports what the coupon would be worth against
	// the given subtotal. Usage is counted at order commit, not here.
	p.POST("/apply", func(c echo.Context) error {
		req := new(applyCouponRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		if req.Code == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
		}

		coupon, discount, err := ps.ValidateCoupon(c.Request().Context(), req.Code, req.Subtotal)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"coupon_id":       coupon.ID,
			"discount_amount": discount,
		})
	})
}
