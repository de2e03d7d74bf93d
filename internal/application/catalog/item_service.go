package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateItemInput represents input for creating an item
type CreateItemInput struct {
	TenantID          uuid.UUID
	Name              string
	Quality           string
	Unit              catalog.Unit
	PreferredVendorID *uuid.UUID
}

// ItemDTO represents an item
type ItemDTO struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"name"`
	Quality           string       `json:"quality,omitempty"`
	Unit              catalog.Unit `json:"unit"`
	Descriptor        string       `json:"descriptor"`
	PreferredVendorID *uuid.UUID   `json:"preferred_vendor_id,omitempty"`
	Active            bool         `json:"active"`
	CreatedAt         time.Time    `json:"created_at"`
}

// ItemService manages the item catalog
type ItemService struct {
	scope  uow.TransactionScope
	logger *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(scope uow.TransactionScope, logger *zap.Logger) *ItemService {
	return &ItemService{scope: scope, logger: logger}
}

// CreateItem creates an item. A preferred vendor must belong to the same tenant.
func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	s.logger.Info("Creating item", zap.String("tenant_id", input.TenantID.String()), zap.String("name", input.Name))

	item, err := catalog.NewItem(input.TenantID, input.Name, input.Quality, input.Unit)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if input.PreferredVendorID != nil {
			vendor, err := repos.Vendors().FindByIDForTenant(ctx, input.TenantID, *input.PreferredVendorID)
			if err != nil {
				return err
			}
			if err := item.SetPreferredVendor(vendor); err != nil {
				return err
			}
		}
		return repos.Items().Create(ctx, item)
	})
	if err != nil {
		s.logger.Warn("Item rejected", zap.String("tenant_id", input.TenantID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Item created", zap.String("item_id", item.ID.String()))
	return toItemDTO(item), nil
}

// GetItem returns an item
func (s *ItemService) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemDTO, error) {
	var item *catalog.Item
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		item, err = repos.Items().FindByIDForTenant(ctx, tenantID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toItemDTO(item), nil
}

// ListItems lists the tenant's items by name
func (s *ItemService) ListItems(ctx context.Context, tenantID uuid.UUID, search string, page, pageSize int) ([]ItemDTO, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = search

	var items []catalog.Item
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		items, err = repos.Items().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i := range items {
		dtos[i] = *toItemDTO(&items[i])
	}
	return dtos, nil
}

func toItemDTO(item *catalog.Item) *ItemDTO {
	return &ItemDTO{
		ID:                item.ID,
		Name:              item.Name,
		Quality:           item.Quality,
		Unit:              item.Unit,
		Descriptor:        item.Descriptor(),
		PreferredVendorID: item.PreferredVendorID,
		Active:            item.Active,
		CreatedAt:         item.CreatedAt,
	}
}
