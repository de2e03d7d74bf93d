package shared

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardedThing struct {
	TenantAggregateRoot
}

func (guardedThing) EntityName() string { return "thing" }

func newGuardedThing(tenantID uuid.UUID) *guardedThing {
	return &guardedThing{TenantAggregateRoot: NewTenantAggregateRoot(tenantID)}
}

func TestTenantGuard_Check(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()

	t.Run("accepts entities of the acting tenant", func(t *testing.T) {
		guard := NewTenantGuard(tenantA)
		assert.NoError(t, guard.Check(newGuardedThing(tenantA), newGuardedThing(tenantA)))
	})

	t.Run("skips nil references", func(t *testing.T) {
		var missing *guardedThing
		guard := NewTenantGuard(tenantA)
		assert.NoError(t, guard.Check(newGuardedThing(tenantA), missing, nil))
	})

	t.Run("rejects foreign entity with details", func(t *testing.T) {
		foreign := newGuardedThing(tenantB)
		err := NewTenantGuard(tenantA).Check(newGuardedThing(tenantA), foreign)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTenantMismatch))

		var mismatch *TenantMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, "thing", mismatch.Entity)
		assert.Equal(t, foreign.ID, mismatch.EntityID)
		assert.Equal(t, tenantA, mismatch.ExpectedTenant)
		assert.Equal(t, tenantB, mismatch.ActualTenant)
	})

	t.Run("requires an acting tenant", func(t *testing.T) {
		err := NewTenantGuard(uuid.Nil).Check(newGuardedThing(tenantA))
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("check pair uses owner tenant", func(t *testing.T) {
		owner := newGuardedThing(tenantB)
		assert.NoError(t, CheckPair(owner, newGuardedThing(tenantB)))
		assert.Error(t, CheckPair(owner, newGuardedThing(tenantA)))
	})
}
