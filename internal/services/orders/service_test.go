package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/session"
	"github.com/mcoot/keyshop/internal/storage/memory"
	"github.com/mcoot/keyshop/internal/testutil"
	"github.com/mcoot/keyshop/internal/testutil/backendtest"
)

func TestOrderHistoryPaging(t *testing.T) {
	ctx := context.Background()
	backend := backendtest.New(t)
	backend.Account(t, "sam", model.RoleSeller)
	backend.Account(t, "carol", model.RoleCustomer)
	game := backend.Listing(t, "sam", "Ashen Crown", 20, 5)
	for range 3 {
		_, err := backend.Shop.Checkout(ctx, "carol", []model.OrderLine{{GameID: game.ID, Quantity: 1}})
		require.NoError(t, err)
	}

	sessions := session.NewManager(backend.Client, memory.New(), session.DefaultConfig(), testutil.NopLogger())
	_, err := sessions.Login(ctx, "s", "carol", backendtest.Password, model.RoleCustomer)
	require.NoError(t, err)
	service := NewService(backend.Client, sessions)

	page, err := service.Page(ctx, "s", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasPrev())
	assert.True(t, page.HasNext())
	assert.Equal(t, "3", page.Content[0].ID)

	page, err = service.Page(ctx, "s", 9, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.PageNumber)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "1", page.Content[0].ID)
}

func TestOrderHistoryRequiresCustomer(t *testing.T) {
	backend := backendtest.New(t)
	sessions := session.NewManager(backend.Client, memory.New(), session.DefaultConfig(), testutil.NopLogger())

	_, err := NewService(backend.Client, sessions).Page(context.Background(), "guest", 1, 10)
	assert.ErrorIs(t, err, model.ErrRoleRequired)
}
