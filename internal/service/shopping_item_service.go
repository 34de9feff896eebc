package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shinyyama/shopping-items/internal/model"
	"github.com/shinyyama/shopping-items/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShoppingItem is the external shape of a stored item.
type ShoppingItem struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateShoppingItemInput struct {
	Name        *string
	Description *string
	Price       decimal.Decimal
	Quantity    int
	Category    *string
}

type UpdateShoppingItemInput struct {
	Name        *string
	Description *string
	Price       decimal.Decimal
	Quantity    int
	Category    *string
}

type ShoppingItemService interface {
	ListAll(ctx context.Context) ([]ShoppingItem, error)
	GetByID(ctx context.Context, id uint64) (*ShoppingItem, error)
	Create(ctx context.Context, input CreateShoppingItemInput) (*ShoppingItem, error)
	Update(ctx context.Context, id uint64, input UpdateShoppingItemInput) (*ShoppingItem, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	ListByCategory(ctx context.Context, category string) ([]ShoppingItem, error)
}

type shoppingItemService struct {
	repo repository.ShoppingItemRepository
}

func NewShoppingItemService(repo repository.ShoppingItemRepository) ShoppingItemService {
	return &shoppingItemService{repo: repo}
}

func (s *shoppingItemService) ListAll(ctx context.Context) ([]ShoppingItem, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return toShoppingItems(items), nil
}

func (s *shoppingItemService) GetByID(ctx context.Context, id uint64) (*ShoppingItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toShoppingItem(item), nil
}

func (s *shoppingItemService) Create(ctx context.Context, input CreateShoppingItemInput) (*ShoppingItem, error) {
	fields, err := normalizeItem(input.Name, input.Description, input.Price, input.Quantity, input.Category)
	if err != nil {
		return nil, err
	}

	item := &model.ShoppingItem{
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Quantity:    fields.Quantity,
		Category:    fields.Category,
		IsActive:    true,
	}
	created, err := s.repo.Add(ctx, item)
	if err != nil {
		return nil, err
	}
	return toShoppingItem(created), nil
}

// Update checks existence before validating, so a missing id is reported as
// ErrNotFound even when the input is also invalid.
func (s *shoppingItemService) Update(ctx context.Context, id uint64, input UpdateShoppingItemInput) (*ShoppingItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields, err := normalizeItem(input.Name, input.Description, input.Price, input.Quantity, input.Category)
	if err != nil {
		return nil, err
	}

	item.Name = fields.Name
	item.Description = fields.Description
	item.Price = fields.Price
	item.Quantity = fields.Quantity
	item.Category = fields.Category

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		// Deleted between the load above and the write.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toShoppingItem(updated), nil
}

func (s *shoppingItemService) Delete(ctx context.Context, id uint64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// ListByCategory treats a blank category as an empty filter result rather
// than an error.
func (s *shoppingItemService) ListByCategory(ctx context.Context, category string) ([]ShoppingItem, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return []ShoppingItem{}, nil
	}
	items, err := s.repo.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return toShoppingItems(items), nil
}

func toShoppingItem(item *model.ShoppingItem) *ShoppingItem {
	return &ShoppingItem{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		Category:    item.Category,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toShoppingItems(items []model.ShoppingItem) []ShoppingItem {
	out := make([]ShoppingItem, 0, len(items))
	for i := range items {
		out = append(out, *toShoppingItem(&items[i]))
	}
	return out
}
