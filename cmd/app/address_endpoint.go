package main

import (
	"net/http"
	"time"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/middleware"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func registerAddressRoutes(g *echo.Group, ar *repository.AddressRepository) {
	p := g.Group("/addresses")
	p.Use(middleware.JWTMiddleware())

	p.POST("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		req := new(addressRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		if req.FullName == "" || req.Line1 == "" || req.City == "" || req.Country == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fullName, line1, city and country are required"})
		}

		userID := cl.UserID
		addr := &model.Address{
			ID:         uuid.New(),
			UserID:     &userID,
			FullName:   req.FullName,
			Phone:      req.Phone,
			Line1:      req.Line1,
			Line2:      req.Line2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
			CreatedAt:  time.Now(),
		}
		if err := ar.Insert(c.Request().Context(), addr); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, addr)
	})

	p.GET("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		addrs, err := ar.ListByUser(c.Request().Context(), cl.UserID)
		if err != nil {
			return writeError(c, err)
		}
		if addrs == nil {
			addrs = []model.Address{}
		}
		return c.JSON(http.StatusOK, addrs)
	})
}
