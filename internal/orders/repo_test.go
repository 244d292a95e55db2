package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oryclothing/ory-backend/pkg/db/models"
	"github.com/oryclothing/ory-backend/pkg/db/types"
	"github.com/oryclothing/ory-backend/pkg/enums"
)

func seedRepoOrder(t *testing.T, repo Repository, id string, total int, items []models.OrderLineItem) {
	t.Helper()

	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = id
	}
	err := repo.Create(context.Background(), &models.Order{
		ID:            id,
		CustomerID:    uuid.New(),
		CustomerEmail: "repo@example.com",
		Subtotal:      total,
		Total:         total,
		Status:        enums.OrderStatusConfirmed,
		ShippingAddress: types.Address{
			FirstName: "Rena",
			LastName:  "Vogel",
			Address:   "1 Test Street",
			City:      "Berlin",
			Zip:       "10115",
			Country:   "DE",
		},
		TrackingNumber:    "ORYTEST0001",
		EstimatedDelivery: "2026-09-05",
		Items:             items,
	})
	require.NoError(t, err)
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	seedRepoOrder(t, repo, "ORY-REPO1", 180, []models.OrderLineItem{
		{ProductID: "stealth", Name: "Ory Stealth", Size: enums.SizeM, Quantity: 1, UnitPrice: 85, Total: 85},
		{ProductID: "carbon", Name: "Ory Carbon", Size: enums.SizeL, Quantity: 1, UnitPrice: 95, Total: 95},
	})

	found, err := repo.FindByID(context.Background(), "ORY-REPO1")
	require.NoError(t, err)

	assert.Equal(t, "ORY-REPO1", found.ID)
	assert.Equal(t, "repo@example.com", found.CustomerEmail)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
	assert.Equal(t, "Berlin", found.ShippingAddress.City)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "stealth", found.Items[0].ProductID)
	assert.Equal(t, 95, found.Items[1].Total)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), "ORY-GHOST")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	seedRepoOrder(t, repo, "ORY-REPO2", 85, []models.OrderLineItem{
		{ProductID: "ice", Name: "Ory Ice", Size: enums.SizeS, Quantity: 1, UnitPrice: 85, Total: 85},
	})

	require.NoError(t, repo.UpdateStatus(context.Background(), "ORY-REPO2", enums.OrderStatusShipped))

	found, err := repo.FindByID(context.Background(), "ORY-REPO2")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)
}

func TestRepositoryAggregates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	seedRepoOrder(t, repo, "ORY-AGG1", 255, []models.OrderLineItem{
		{ProductID: "stealth", Name: "Ory Stealth", Size: enums.SizeM, Quantity: 3, UnitPrice: 85, Total: 255},
	})
	seedRepoOrder(t, repo, "ORY-AGG2", 205, []models.OrderLineItem{
		{ProductID: "stealth", Name: "Ory Stealth", Size: enums.SizeL, Quantity: 1, UnitPrice: 85, Total: 85},
		{ProductID: "midnight", Name: "Ory Midnight", Size: enums.SizeM, Quantity: 1, UnitPrice: 110, Total: 110},
	})

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	revenue, err := repo.SumTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(460), revenue)

	units, err := repo.SumItemQuantities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), units)

	sold, err := repo.SumQuantitiesByProduct(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), sold["stealth"])
	assert.Equal(t, int64(1), sold["midnight"])
}
