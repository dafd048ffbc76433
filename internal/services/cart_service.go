package services

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartStore is the persisted-cart slice of the repository layer.
type CartStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
	AddOrIncrement(ctx context.Context, item *model.CartItem) error
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// CartService maintains the signed-in user's persisted cart. The cart
// is display state only; checkout re-prices everything.
type CartService struct {
	Repo    CartStore
	Catalog CatalogStore
}

func NewCartService(repo CartStore, catalog CatalogStore) *CartService {
	return &CartService{Repo: repo, Catalog: catalog}
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	items, err := s.Repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &model.CartResponse{Items: items, Total: decimal.Zero}
	if resp.Items == nil {
		resp.Items = []model.CartLine{}
	}
	for _, it := range items {
		resp.Total = resp.Total.Add(it.Subtotal)
	}
	return resp, nil
}

func (s *CartService) Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID, variantID *uuid.UUID, size string, qty int) error {
	if qty <= 0 {
		qty = 1
	}

	product, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return &checkout.InvalidSkuError{ProductID: productID, VariantID: variantID, Size: size, Reason: "unknown product"}
	}
	if variantID != nil {
		variant, err := s.Catalog.GetVariant(ctx, *variantID)
		if err != nil {
			return err
		}
		if variant == nil || variant.ProductID != productID {
			return &checkout.InvalidSkuError{ProductID: productID, VariantID: variantID, Size: size, Reason: "unknown variant"}
		}
		if size == "" {
			size = variant.Size
		}
	}

	return s.Repo.AddOrIncrement(ctx, &model.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Size:      size,
		Quantity:  qty,
	})
}

func (s *CartService) Update(ctx context.Context, userID, itemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be > 0")
	}
	return s.Repo.SetQuantity(ctx, userID, itemID, qty)
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.Repo.Remove(ctx, userID, itemID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.Clear(ctx, userID)
}

// Lines converts the persisted cart into checkout lines for users who
// start checkout from their saved cart instead of the client payload.
func (s *CartService) Lines(ctx context.Context, userID uuid.UUID) ([]checkout.Line, error) {
	items, err := s.Repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]checkout.Line, 0, len(items))
	for _, it := range items {
		out = append(out, checkout.Line{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Size:      it.Size,
			Quantity:  it.Quantity,
		})
	}
	return out, nil
}
