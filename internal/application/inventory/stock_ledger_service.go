package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockBalanceDTO is the available stock of an item
type StockBalanceDTO struct {
	ItemID         uuid.UUID          `json:"item_id"`
	Available      inventory.Quantity `json:"available"`
	MovementCount  int64              `json:"movement_count"`
	LastMovementAt *time.Time         `json:"last_movement_at,omitempty"`
}

// StockMovementDTO represents one movement of the log
type StockMovementDTO struct {
	ID         uuid.UUID            `json:"id"`
	ItemID     uuid.UUID            `json:"item_id"`
	Direction  inventory.Direction  `json:"direction"`
	Quantity   inventory.Quantity   `json:"quantity"`
	SourceType inventory.SourceType `json:"source_type"`
	SourceID   *uuid.UUID           `json:"source_id,omitempty"`
	Reference  string               `json:"reference,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// StockVerificationDTO compares the cached balance of an item with a
// replay of its movement log.
type StockVerificationDTO struct {
	ItemID     uuid.UUID          `json:"item_id"`
	Cached     inventory.Quantity `json:"cached"`
	Replayed   inventory.Quantity `json:"replayed"`
	Consistent bool               `json:"consistent"`
}

// RecordMovementInput is a manual stock adjustment
type RecordMovementInput struct {
	TenantID  uuid.UUID
	ItemID    uuid.UUID
	Direction inventory.Direction
	Quantity  inventory.Quantity
	Note      string
}

// StockLedgerService records stock movements and answers stock queries.
// The movement log is the source of truth; the balance row is a cache of
// its fold that can always be rebuilt.
type StockLedgerService struct {
	scope  uow.TransactionScope
	logger *zap.Logger
}

// NewStockLedgerService creates a new StockLedgerService
func NewStockLedgerService(scope uow.TransactionScope, logger *zap.Logger) *StockLedgerService {
	return &StockLedgerService{scope: scope, logger: logger}
}

// RecordMovementInTx appends a movement for item, which must be locked in
// the same unit of work, and folds it into the cached balance. An OUT
// movement larger than the available stock in any dimension is rejected and
// nothing is written.
func (s *StockLedgerService) RecordMovementInTx(
	ctx context.Context,
	repos uow.TransactionalRepositories,
	tenantID uuid.UUID,
	item *catalog.Item,
	direction inventory.Direction,
	qty inventory.Quantity,
	ref inventory.Reference,
) (*inventory.StockMovement, error) {
	if err := shared.NewTenantGuard(tenantID).Check(item); err != nil {
		return nil, err
	}
	movement, err := inventory.NewStockMovement(tenantID, item.ID, direction, qty, ref)
	if err != nil {
		return nil, err
	}

	balance, err := s.lockBalance(ctx, repos, tenantID, item.ID)
	if err != nil {
		return nil, err
	}
	if direction == inventory.DirectionOut {
		if err := inventory.CheckAvailability(item.ID, balance.Available(), movement.Quantity); err != nil {
			return nil, err
		}
	}

	if err := repos.StockMovements().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to create stock movement: %w", err)
	}
	balance.Apply(movement)
	if err := repos.StockBalances().SaveWithLock(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to save stock balance: %w", err)
	}
	return movement, nil
}

// lockBalance locks the cache row of an item, seeding it from the log when
// the row does not exist yet.
func (s *StockLedgerService) lockBalance(ctx context.Context, repos uow.TransactionalRepositories, tenantID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	balance, err := repos.StockBalances().FindByItemForUpdate(ctx, tenantID, itemID)
	if err == nil {
		return balance, nil
	}
	if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("failed to lock stock balance: %w", err)
	}

	movements, err := repos.StockMovements().FindAllByItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock movements: %w", err)
	}
	balance = inventory.NewStockBalance(tenantID, itemID)
	if len(movements) > 0 {
		balance.Reset(inventory.Replay(movements))
	}
	if err := repos.StockBalances().Create(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to create stock balance: %w", err)
	}
	return balance, nil
}

// RecordMovement records a manual stock adjustment
func (s *StockLedgerService) RecordMovement(ctx context.Context, input RecordMovementInput) (*StockMovementDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "record_movement")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, input.TenantID.String(),
		telemetry.SpanAttrItemID, input.ItemID.String(),
		"direction", string(input.Direction),
	)

	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForUpdate(ctx, input.TenantID, input.ItemID)
		if err != nil {
			return err
		}
		movement, err = s.RecordMovementInTx(ctx, repos, input.TenantID, item, input.Direction, input.Quantity, inventory.ManualReference(input.Note))
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Stock movement rejected",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("item_id", input.ItemID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Stock movement recorded",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("item_id", input.ItemID.String()),
		zap.String("direction", string(movement.Direction)),
		zap.String("quantity", movement.Quantity.String()),
	)
	return toStockMovementDTO(movement), nil
}

// CurrentBalance returns the available stock of an item
func (s *StockLedgerService) CurrentBalance(ctx context.Context, tenantID, itemID uuid.UUID) (*StockBalanceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "current_balance")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrItemID, itemID.String())

	var dto *StockBalanceDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Items().FindByIDForTenant(ctx, tenantID, itemID); err != nil {
			return err
		}
		balance, err := repos.StockBalances().FindByItem(ctx, tenantID, itemID)
		if err == nil {
			dto = toStockBalanceDTO(balance)
			return nil
		}
		if !shared.IsNotFound(err) {
			return fmt.Errorf("failed to find stock balance: %w", err)
		}
		fold, err := s.replay(ctx, repos, tenantID, itemID)
		if err != nil {
			return err
		}
		dto = &StockBalanceDTO{ItemID: itemID, Available: fold.Available(), MovementCount: fold.Count, LastMovementAt: fold.LastAt}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return dto, nil
}

// ValidateAvailability returns an InsufficientStockError when qty exceeds
// the available stock of the item in any dimension.
func (s *StockLedgerService) ValidateAvailability(ctx context.Context, tenantID, itemID uuid.UUID, qty inventory.Quantity) error {
	balance, err := s.CurrentBalance(ctx, tenantID, itemID)
	if err != nil {
		return err
	}
	return inventory.CheckAvailability(itemID, balance.Available, qty)
}

// ListBalances returns the cached balance of every item the tenant has moved
func (s *StockLedgerService) ListBalances(ctx context.Context, tenantID uuid.UUID) ([]StockBalanceDTO, error) {
	var balances []inventory.StockBalance
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		balances, err = repos.StockBalances().FindAllForTenant(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]StockBalanceDTO, len(balances))
	for i := range balances {
		dtos[i] = *toStockBalanceDTO(&balances[i])
	}
	return dtos, nil
}

// ListMovements pages through the movement log of an item, newest first
func (s *StockLedgerService) ListMovements(ctx context.Context, tenantID, itemID uuid.UUID, page, pageSize int) (shared.Paginated[StockMovementDTO], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "occurred_at"

	var movements []inventory.StockMovement
	var total int64
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Items().FindByIDForTenant(ctx, tenantID, itemID); err != nil {
			return err
		}
		var err error
		movements, total, err = repos.StockMovements().FindByItem(ctx, tenantID, itemID, filter)
		return err
	})
	if err != nil {
		return shared.Paginated[StockMovementDTO]{}, err
	}
	dtos := make([]StockMovementDTO, len(movements))
	for i := range movements {
		dtos[i] = *toStockMovementDTO(&movements[i])
	}
	return shared.NewPaginated(dtos, total, filter.Page, filter.PageSize), nil
}

// VerifyBalance replays the movement log of an item and compares it with
// the cached balance. It changes nothing.
func (s *StockLedgerService) VerifyBalance(ctx context.Context, tenantID, itemID uuid.UUID) (*StockVerificationDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "verify_balance")
	defer span.End()

	var result *StockVerificationDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Items().FindByIDForTenant(ctx, tenantID, itemID); err != nil {
			return err
		}
		fold, err := s.replay(ctx, repos, tenantID, itemID)
		if err != nil {
			return err
		}
		result = &StockVerificationDTO{ItemID: itemID, Replayed: fold.Raw, Cached: inventory.ZeroQuantity()}

		balance, err := repos.StockBalances().FindByItem(ctx, tenantID, itemID)
		switch {
		case err == nil:
			result.Cached = balance.Raw
			result.Consistent = balance.Matches(fold)
		case shared.IsNotFound(err):
			result.Consistent = fold.Count == 0
		default:
			return fmt.Errorf("failed to find stock balance: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !result.Consistent {
		s.logger.Warn("Stock balance cache drifted from movement log",
			zap.String("tenant_id", tenantID.String()),
			zap.String("item_id", itemID.String()),
			zap.String("cached", result.Cached.String()),
			zap.String("replayed", result.Replayed.String()),
		)
	}
	return result, nil
}

// RebuildBalance replaces the cached balance of an item with a replay of
// its movement log.
func (s *StockLedgerService) RebuildBalance(ctx context.Context, tenantID, itemID uuid.UUID) (*StockBalanceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "rebuild_balance")
	defer span.End()

	var balance *inventory.StockBalance
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Items().FindByIDForUpdate(ctx, tenantID, itemID); err != nil {
			return err
		}
		var err error
		balance, err = s.lockBalance(ctx, repos, tenantID, itemID)
		if err != nil {
			return err
		}
		fold, err := s.replay(ctx, repos, tenantID, itemID)
		if err != nil {
			return err
		}
		if balance.Matches(fold) {
			return nil
		}
		balance.Reset(fold)
		return repos.StockBalances().SaveWithLock(ctx, balance)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Stock balance rebuilt",
		zap.String("tenant_id", tenantID.String()),
		zap.String("item_id", itemID.String()),
		zap.Int64("movements", balance.MovementCount),
	)
	return toStockBalanceDTO(balance), nil
}

func (s *StockLedgerService) replay(ctx context.Context, repos uow.TransactionalRepositories, tenantID, itemID uuid.UUID) (inventory.Fold, error) {
	movements, err := repos.StockMovements().FindAllByItem(ctx, tenantID, itemID)
	if err != nil {
		return inventory.Fold{}, fmt.Errorf("failed to load stock movements: %w", err)
	}
	return inventory.Replay(movements), nil
}

func toStockBalanceDTO(b *inventory.StockBalance) *StockBalanceDTO {
	return &StockBalanceDTO{
		ItemID:         b.ItemID,
		Available:      b.Available(),
		MovementCount:  b.MovementCount,
		LastMovementAt: b.LastMovementAt,
	}
}

func toStockMovementDTO(m *inventory.StockMovement) *StockMovementDTO {
	return &StockMovementDTO{
		ID:         m.ID,
		ItemID:     m.ItemID,
		Direction:  m.Direction,
		Quantity:   m.Quantity,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
		Reference:  m.Reference,
		OccurredAt: m.OccurredAt,
	}
}
