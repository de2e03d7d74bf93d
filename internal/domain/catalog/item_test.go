package catalog

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid item", func(t *testing.T) {
		item, err := NewItem(tenantID, "Apple Shimla", "A", UnitCrate)
		require.NoError(t, err)
		assert.Equal(t, "Apple Shimla A (CRATE)", item.Descriptor())
		assert.True(t, item.Active)
	})

	t.Run("invalid unit", func(t *testing.T) {
		_, err := NewItem(tenantID, "Onion", "", Unit("TON"))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestItem_SetPreferredVendor(t *testing.T) {
	tenantID := uuid.New()
	item, err := NewItem(tenantID, "Potato", "", UnitKg)
	require.NoError(t, err)

	t.Run("same tenant vendor", func(t *testing.T) {
		vendor, err := partner.NewVendor(tenantID, "Kisan Farms")
		require.NoError(t, err)
		require.NoError(t, item.SetPreferredVendor(vendor))
		assert.Equal(t, vendor.ID, *item.PreferredVendorID)
	})

	t.Run("foreign vendor rejected", func(t *testing.T) {
		vendor, err := partner.NewVendor(uuid.New(), "Other Farms")
		require.NoError(t, err)

		err = item.SetPreferredVendor(vendor)
		assert.True(t, errors.Is(err, shared.ErrTenantMismatch))
	})
}
