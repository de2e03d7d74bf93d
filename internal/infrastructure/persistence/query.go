package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tenantScope restricts a query to the rows of one tenant
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// paginate applies the page window of a filter
func paginate(filter shared.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset, limit := filter.Window()
		return db.Offset(offset).Limit(limit)
	}
}

// nameSearch matches a case-insensitive substring of column
func nameSearch(column, search string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(search)+"%")
	}
}

// forUpdate takes a row lock held until the transaction ends. SQLite has
// no row locks; its dialect drops the clause and the write lock of the
// transaction serializes instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findGuarded loads a row by primary key and checks its owner against the
// acting tenant, so a foreign id surfaces as a tenant mismatch instead of
// looking absent.
func findGuarded[T any](query *gorm.DB, tenantID, id uuid.UUID) (*T, error) {
	var entity T
	if err := query.Where("id = ?", id).Take(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(entityName(&entity), id)
		}
		return nil, err
	}
	if scoped, ok := any(&entity).(shared.TenantScoped); ok {
		if err := shared.NewTenantGuard(tenantID).Check(scoped); err != nil {
			return nil, err
		}
	}
	return &entity, nil
}

func entityName(v any) string {
	if n, ok := v.(shared.Named); ok {
		return n.EntityName()
	}
	return "record"
}

// lockable is an aggregate saved under optimistic locking
type lockable interface {
	GetID() uuid.UUID
	GetVersion() int
	IncrementVersion()
}

// saveWithLock writes every column of entity if its row still carries the
// version it was loaded with, and bumps the in-memory version on success so
// the same aggregate can be saved again in the same transaction.
func saveWithLock(ctx context.Context, db *gorm.DB, entity lockable) error {
	expected := entity.GetVersion()
	entity.IncrementVersion()
	result := db.WithContext(ctx).
		Model(entity).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "tenant_id", "created_at", clause.Associations).
		Updates(entity)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entityName(entity), entity.GetID(), shared.ErrConcurrencyConflict)
	}
	return nil
}

// translateError maps driver errors onto domain errors
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", shared.ErrAlreadyExists, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
