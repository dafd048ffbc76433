package main

import (
	"net/http"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/middleware"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// cartItemRequest is the strictly parsed client cart line. Any price
// the client attaches is ignored; pricing is server-side only.
type cartItemRequest struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId,omitempty"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

type addressRequest struct {
	ID         *string `json:"id,omitempty"`
	FullName   string  `json:"fullName"`
	Phone      string  `json:"phone"`
	Line1      string  `json:"line1"`
	Line2      string  `json:"line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

type createSessionRequest struct {
	CartItems  []cartItemRequest `json:"cartItems"`
	Address    *addressRequest   `json:"address"`
	CouponCode string            `json:"couponCode"`
	SuccessURL string            `json:"successUrl"`
	CancelURL  string            `json:"cancelUrl"`
	Email      string            `json:"email"`
}

func parseLines(items []cartItemRequest) ([]checkout.Line, error) {
	lines := make([]checkout.Line, 0, len(items))
	for _, it := range items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid productId")
		}
		line := checkout.Line{ProductID: productID, Size: it.Size, Quantity: it.Quantity}
		if it.VariantID != nil && *it.VariantID != "" {
			variantID, err := uuid.Parse(*it.VariantID)
			if err != nil {
				return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid variantId")
			}
			line.VariantID = &variantID
		}
		if line.Quantity <= 0 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func registerCheckoutRoutes(g *echo.Group, cs *services.CheckoutService, carts *services.CartService, cfg checkoutDefaults) {
	p := g.Group("/checkout")

	// Guests may check out too, so auth is optional here. A valid
	// bearer token binds the session (and later the cart clear) to
	// the user.
	p.POST("/session", func(c echo.Context) error {
		req := new(createSessionRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}

		cl := middleware.TryGetClaimsFromAuthHeader(c)

		lines, err := parseLines(req.CartItems)
		if err != nil {
			return err
		}
		// Signed-in users may omit cartItems to check out their saved cart.
		if len(lines) == 0 && cl != nil {
			lines, err = carts.Lines(c.Request().Context(), cl.UserID)
			if err != nil {
				return writeError(c, err)
			}
		}

		in := services.SessionInput{
			Lines:      lines,
			CouponCode: req.CouponCode,
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
			Email:      req.Email,
		}
		if in.SuccessURL == "" {
			in.SuccessURL = cfg.SuccessURL
		}
		if in.CancelURL == "" {
			in.CancelURL = cfg.CancelURL
		}

		if cl != nil {
			userID := cl.UserID
			in.UserID = &userID
			if in.Email == "" {
				in.Email = cl.Email
			}
		}

		if req.Address != nil {
			if req.Address.ID != nil && *req.Address.ID != "" {
				addressID, err := uuid.Parse(*req.Address.ID)
				if err != nil {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address id"})
				}
				in.AddressID = &addressID
			} else {
				in.Address = &model.Address{
					FullName:   req.Address.FullName,
					Phone:      req.Address.Phone,
					Line1:      req.Address.Line1,
					Line2:      req.Address.Line2,
					City:       req.Address.City,
					State:      req.Address.State,
					PostalCode: req.Address.PostalCode,
					Country:    req.Address.Country,
				}
			}
		}

		result, err := cs.CreateSession(c.Request().Context(), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	})
}

type checkoutDefaults struct {
	SuccessURL string
	CancelURL  string
}
