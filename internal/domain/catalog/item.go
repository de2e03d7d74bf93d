package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// Unit is the unit an item is usually traded in
type Unit string

const (
	UnitKg    Unit = "KG"
	UnitCrate Unit = "CRATE"
	UnitBox   Unit = "BOX"
)

// IsValid returns true if the unit is valid
func (u Unit) IsValid() bool {
	switch u {
	case UnitKg, UnitCrate, UnitBox:
		return true
	}
	return false
}

// Item is a tradeable good, e.g. "Apple Shimla, grade A, per crate".
// The item row is also the lock target that serializes stock movements.
type Item struct {
	shared.TenantAggregateRoot
	Name              string     `gorm:"type:varchar(200);not null"`
	Quality           string     `gorm:"type:varchar(50)"`
	Unit              Unit       `gorm:"type:varchar(10);not null"`
	PreferredVendorID *uuid.UUID `gorm:"type:uuid"`
	Active            bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item
func NewItem(tenantID uuid.UUID, name, quality string, unit Unit) (*Item, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewValidationError("name", "must be 1-200 characters")
	}
	if !unit.IsValid() {
		return nil, shared.NewValidationError("unit", "must be KG, CRATE or BOX").WithExpected("KG|CRATE|BOX", string(unit))
	}
	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Quality:             strings.TrimSpace(quality),
		Unit:                unit,
		Active:              true,
	}, nil
}

// SetPreferredVendor ties the item to a vendor of the same tenant
func (i *Item) SetPreferredVendor(vendor shared.TenantScoped) error {
	if err := shared.CheckPair(i, vendor); err != nil {
		return err
	}
	id := vendor.GetID()
	i.PreferredVendorID = &id
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// Descriptor returns the display label with quality and unit
func (i *Item) Descriptor() string {
	if i.Quality == "" {
		return i.Name + " (" + string(i.Unit) + ")"
	}
	return i.Name + " " + i.Quality + " (" + string(i.Unit) + ")"
}

// EntityName implements shared.Named
func (Item) EntityName() string { return "item" }
