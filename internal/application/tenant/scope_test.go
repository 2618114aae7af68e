package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/tenant"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestResolveBusiness(t *testing.T) {
	id, err := tenant.ResolveBusiness(tenant.Actor{BusinessID: " biz-1 ", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "biz-1", id)

	_, err = tenant.ResolveBusiness(tenant.Actor{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveActor_ExigeUsuario(t *testing.T) {
	_, _, err := tenant.ResolveActor(tenant.Actor{BusinessID: "biz-1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	biz, user, err := tenant.ResolveActor(tenant.Actor{BusinessID: "biz-1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "biz-1", biz)
	assert.Equal(t, "u1", user)
}

func TestOwns(t *testing.T) {
	assert.True(t, tenant.Owns("a", "a"))
	assert.False(t, tenant.Owns("a", "b"))
	assert.False(t, tenant.Owns("", ""))
}

func TestActorEnContexto(t *testing.T) {
	_, ok := tenant.FromContext(context.Background())
	assert.False(t, ok)

	ctx := tenant.WithActor(context.Background(), tenant.Actor{BusinessID: "b", UserID: "u", Role: tenant.RoleAdmin})
	a, ok := tenant.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "b", a.BusinessID)
	assert.Equal(t, tenant.RoleAdmin, a.Role)
}
