package main

import (
	"net/http"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/middleware"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type addCartRequest struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId,omitempty"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func registerCartRoutes(g *echo.Group, cs *services.CartService) {
	p := g.Group("/cart")
	p.Use(middleware.JWTMiddleware())

	p.GET("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		cart, err := cs.Get(c.Request().Context(), cl.UserID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, cart)
	})

	p.POST("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		req := new(addCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid productId"})
		}
		var variantID *uuid.UUID
		if req.VariantID != nil && *req.VariantID != "" {
			v, err := uuid.Parse(*req.VariantID)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid variantId"})
			}
			variantID = &v
		}
		if err := cs.Add(c.Request().Context(), cl.UserID, productID, variantID, req.Size, req.Quantity); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{"message": "added"})
	})

	p.PUT("/:itemId", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		itemID, err := uuid.Parse(c.Param("itemId"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
		}
		req := new(updateCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		if err := cs.Update(c.Request().Context(), cl.UserID, itemID, req.Quantity); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
	})

	p.DELETE("/:itemId", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		itemID, err := uuid.Parse(c.Param("itemId"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
		}
		if err := cs.Remove(c.Request().Context(), cl.UserID, itemID); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
	})

	p.DELETE("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if err := cs.Clear(c.Request().Context(), cl.UserID); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "cleared"})
	})
}
