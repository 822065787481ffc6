package repositories_test

import (
	"context"
	"testing"

	"vinoteca/internal/models"
	"vinoteca/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGORMSupplierRepository_Lifecycle(t *testing.T) {
	db, reg := openTestDB(t)
	repo := repositories.NewGORMSupplierRepository(db, reg)
	ctx := context.Background()

	supplier := &models.Supplier{
		Name:        "Vinos del Sur",
		Email:       "orders@vinosdelsur.example",
		ContactName: "M. Ortega",
	}
	require.NoError(t, repo.Create(ctx, supplier))
	require.NotEmpty(t, supplier.ID)

	got, err := repo.GetByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vinos del Sur", got.Name)

	patched, err := repo.Patch(ctx, supplier.ID, map[string]any{"phone": "+34 600 000 000"})
	require.NoError(t, err)
	assert.Equal(t, "+34 600 000 000", patched.Phone)
	assert.Equal(t, "Vinos del Sur", patched.Name)

	require.NoError(t, repo.Delete(ctx, supplier.ID))
	_, err = repo.GetByID(ctx, supplier.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, supplier.ID), repositories.ErrNotFound)
}

func TestGORMSupplierRepository_ListQuery(t *testing.T) {
	db, reg := openTestDB(t)
	repo := repositories.NewGORMSupplierRepository(db, reg)
	ctx := context.Background()

	for _, name := range []string{"Alpha Imports", "Beta Cellars", "Gamma Wines"} {
		require.NoError(t, repo.Create(ctx, &models.Supplier{Name: name}))
	}

	res, err := repo.List(ctx, repositories.SupplierListParams{Query: "cellars"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Suppliers, 1)
	assert.Equal(t, "Beta Cellars", res.Suppliers[0].Name)

	res, err = repo.List(ctx, repositories.SupplierListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Equal(t, "Alpha Imports", res.Suppliers[0].Name, "default sort is name ascending")
}
