package services_test

import (
	"context"
	"testing"
	"time"

	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplierService(t *testing.T) (*services.SupplierService, *recordingPublisher) {
	t.Helper()
	reg := schema.NewRegistry()
	models.Register(reg)
	repo := repositories.NewMockSupplierRepository(reg)
	pub := &recordingPublisher{}
	return services.NewSupplierService(repo, reg, newSpyCache(), time.Minute, pub), pub
}

func TestSupplierService_Lifecycle(t *testing.T) {
	svc, pub := newSupplierService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Supplier{Name: "Quai des Vins", Email: "hello@quai.example"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	phone := "+33 1 00 00 00 00"
	patched, err := svc.Patch(ctx, created.ID, &models.SupplierPatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, patched.Phone)
	assert.Equal(t, "Quai des Vins", patched.Name)

	// Empty patch reads without mutating or publishing.
	same, err := svc.Patch(ctx, created.ID, &models.SupplierPatch{})
	require.NoError(t, err)
	assert.Equal(t, patched.UpdatedAt, same.UpdatedAt)

	list, err := svc.List(ctx, repositories.SupplierListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.Equal(t, []string{"supplier.created", "supplier.updated", "supplier.deleted"}, pub.published())
}
