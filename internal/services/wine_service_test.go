package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockWineRepository is a mock implementation of repositories.WineRepository
type MockWineRepository struct {
	mock.Mock
}

func (m *MockWineRepository) List(ctx context.Context, params repositories.WineListParams) (*repositories.WineListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.WineListResult), args.Error(1)
}

func (m *MockWineRepository) GetByID(ctx context.Context, id string) (*models.Wine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wine), args.Error(1)
}

func (m *MockWineRepository) Create(ctx context.Context, wine *models.Wine) error {
	args := m.Called(ctx, wine)
	return args.Error(0)
}

func (m *MockWineRepository) Patch(ctx context.Context, id string, cols map[string]any) (*models.Wine, error) {
	args := m.Called(ctx, id, cols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wine), args.Error(1)
}

func (m *MockWineRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSupplierRepository is a mock implementation of
// repositories.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) List(ctx context.Context, params repositories.SupplierListParams) (*repositories.SupplierListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.SupplierListResult), args.Error(1)
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Patch(ctx context.Context, id string, cols map[string]any) (*models.Supplier, error) {
	args := m.Called(ctx, id, cols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// spyCache is an in-memory cache that records invalidations.
type spyCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newSpyCache() *spyCache {
	return &spyCache{entries: map[string][]byte{}}
}

func (c *spyCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.entries[key]
	return val, ok
}

func (c *spyCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *spyCache) InvalidatePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, prefix)
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func newWineService(repo *MockWineRepository, suppliers *MockSupplierRepository) (*services.WineService, *spyCache, *recordingPublisher) {
	reg := schema.NewRegistry()
	models.Register(reg)
	c := newSpyCache()
	pub := &recordingPublisher{}
	return services.NewWineService(repo, suppliers, reg, c, time.Minute, pub), c, pub
}

func TestWineService_ListUsesCache(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, _ := newWineService(repo, suppliers)

	result := &repositories.WineListResult{
		Wines: []models.Wine{{ID: "1", SKU: "A", Name: "Alpha", Price: 10}},
		Total: 1, Page: 1, Limit: 20,
	}
	repo.On("List", mock.Anything, mock.Anything).Return(result, nil).Once()

	first, err := svc.List(context.Background(), repositories.WineListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Total)

	// Second call is served from cache; the repo expectation is Once.
	second, err := svc.List(context.Background(), repositories.WineListParams{})
	require.NoError(t, err)
	assert.Equal(t, first.Wines[0].SKU, second.Wines[0].SKU)

	repo.AssertExpectations(t)
}

func TestWineService_CreateInvalidatesAndPublishes(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, c, pub := newWineService(repo, suppliers)

	// Prime the cache so create has something to invalidate.
	repo.On("List", mock.Anything, mock.Anything).
		Return(&repositories.WineListResult{Page: 1, Limit: 20}, nil).Once()
	_, err := svc.List(context.Background(), repositories.WineListParams{})
	require.NoError(t, err)

	wine := &models.Wine{SKU: "NEW-1", Name: "New", Price: 12}
	repo.On("Create", mock.Anything, wine).Return(nil).Once()

	created, err := svc.Create(context.Background(), wine)
	require.NoError(t, err)
	assert.Equal(t, wine, created)
	assert.Contains(t, c.invalidated, "wines")
	assert.Equal(t, []string{"wine.created"}, pub.published())

	// The cached page is gone; listing hits the repo again.
	repo.On("List", mock.Anything, mock.Anything).
		Return(&repositories.WineListResult{Page: 1, Limit: 20}, nil).Once()
	_, err = svc.List(context.Background(), repositories.WineListParams{})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestWineService_CreateRejectsUnknownSupplier(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, pub := newWineService(repo, suppliers)

	suppliers.On("GetByID", mock.Anything, "ghost").Return(nil, repositories.ErrNotFound).Once()

	_, err := svc.Create(context.Background(), &models.Wine{
		SKU: "S-1", Name: "Tinto", Price: 8, SupplierID: "ghost",
	})
	require.Error(t, err)

	ve, ok := schema.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "supplier_id", ve.Fields[0].Field)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, pub.published())
}

func TestWineService_PatchSendsOnlyPresentColumns(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, pub := newWineService(repo, suppliers)

	stock := 3
	updated := &models.Wine{ID: "w1", SKU: "A", Name: "Alpha", Price: 10, Stock: 3}
	repo.On("Patch", mock.Anything, "w1", map[string]any{"stock": 3}).Return(updated, nil).Once()

	got, err := svc.Patch(context.Background(), "w1", &models.WinePatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, []string{"wine.updated"}, pub.published())

	repo.AssertExpectations(t)
}

func TestWineService_EmptyPatchIsARead(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, pub := newWineService(repo, suppliers)

	current := &models.Wine{ID: "w1", SKU: "A", Name: "Alpha", Price: 10}
	repo.On("GetByID", mock.Anything, "w1").Return(current, nil).Once()

	got, err := svc.Patch(context.Background(), "w1", &models.WinePatch{})
	require.NoError(t, err)
	assert.Equal(t, current, got)

	repo.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, pub.published(), "a no-op patch publishes nothing")
}

func TestWineService_DeletePublishes(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, pub := newWineService(repo, suppliers)

	repo.On("Delete", mock.Anything, "w1").Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "w1"))
	assert.Equal(t, []string{"wine.deleted"}, pub.published())
}

func TestWineService_DeleteMissingPublishesNothing(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, pub := newWineService(repo, suppliers)

	repo.On("Delete", mock.Anything, "ghost").Return(repositories.ErrNotFound).Once()

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Empty(t, pub.published())
}

func TestWineService_SetLabelPatchesDerivedColumn(t *testing.T) {
	repo := new(MockWineRepository)
	suppliers := new(MockSupplierRepository)
	svc, _, pub := newWineService(repo, suppliers)

	updated := &models.Wine{ID: "w1", SKU: "A", Name: "Alpha", Price: 10, LabelPath: "alpha_x.png"}
	repo.On("Patch", mock.Anything, "w1", map[string]any{"label_path": "alpha_x.png"}).
		Return(updated, nil).Once()

	got, err := svc.SetLabel(context.Background(), "w1", "alpha_x.png")
	require.NoError(t, err)
	assert.Equal(t, "alpha_x.png", got.LabelPath)
	assert.Equal(t, []string{"wine.updated"}, pub.published())

	repo.AssertExpectations(t)
}
