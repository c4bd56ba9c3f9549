package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
	"go-product-insight/internal/session"
	"go-product-insight/internal/testutil"
	"go-product-insight/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type extractorMock struct {
	mock.Mock
}

func (m *extractorMock) Extract(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.AnalysisResult), args.Error(1)
}

func newStore(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCachedExtractorSkipsModelOnHit(t *testing.T) {
	ctx := context.Background()
	req := testutil.Request("a.jpg")

	inner := &extractorMock{}
	inner.On("Extract", mock.Anything, req).Return(testutil.AnalysisResult("Serum"), nil).Once()

	c := NewCachedExtractor(inner, newStore(t, time.Hour))
	assert.False(t, c.Retained(ctx, req))

	first, err := c.Extract(ctx, req)
	require.NoError(t, err)
	assert.True(t, c.Retained(ctx, req))

	second, err := c.Extract(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	inner.AssertNumberOfCalls(t, "Extract", 1)
}

func TestCachedExtractorRelease(t *testing.T) {
	ctx := session.WithUser(context.Background(), "alice")
	req := testutil.Request("a.jpg")

	inner := &extractorMock{}
	inner.On("Extract", mock.Anything, req).Return(testutil.AnalysisResult("Serum"), nil).Twice()

	c := NewCachedExtractor(inner, newStore(t, time.Hour))

	_, err := c.Extract(ctx, req)
	require.NoError(t, err)
	require.True(t, c.Retained(ctx, req))

	c.Release(ctx, req)
	assert.False(t, c.Retained(ctx, req))

	_, err = c.Extract(ctx, req)
	require.NoError(t, err)
	inner.AssertNumberOfCalls(t, "Extract", 2)
}

func TestCachedExtractorIsPerUser(t *testing.T) {
	alice := session.WithUser(context.Background(), "alice")
	bob := session.WithUser(context.Background(), "bob")
	req := testutil.Request("a.jpg")

	inner := &extractorMock{}
	inner.On("Extract", mock.Anything, req).Return(testutil.AnalysisResult("Serum"), nil).Twice()

	c := NewCachedExtractor(inner, newStore(t, time.Hour))

	_, err := c.Extract(alice, req)
	require.NoError(t, err)
	assert.True(t, c.Retained(alice, req))
	assert.False(t, c.Retained(bob, req))

	_, err = c.Extract(bob, req)
	require.NoError(t, err)
	inner.AssertNumberOfCalls(t, "Extract", 2)
}

func TestCachedExtractorDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	req := testutil.Request("a.jpg")
	failure := ierr.NewExtractionError(ierr.KindRateLimit, errors.New("quota"))

	inner := &extractorMock{}
	inner.On("Extract", mock.Anything, req).Return(model.AnalysisResult{}, failure).Twice()

	c := NewCachedExtractor(inner, newStore(t, time.Hour))

	_, err := c.Extract(ctx, req)
	assert.Equal(t, ierr.KindRateLimit, ierr.KindOf(err))
	assert.False(t, c.Retained(ctx, req))

	_, err = c.Extract(ctx, req)
	assert.Error(t, err)
	inner.AssertNumberOfCalls(t, "Extract", 2)
}

func TestSQLiteStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, time.Hour)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	hash := utils.Hash("image")
	require.NoError(t, store.Set(ctx, hash, testutil.AnalysisJSON("Toner")))

	got, err := store.Get(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Toner", got.ProductDetails.Name)

	now = now.Add(2 * time.Hour)
	got, err = store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, got)

	purged, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	now = now.Add(-2 * time.Hour)
	require.NoError(t, store.Set(ctx, hash, testutil.AnalysisJSON("Toner")))
	require.NoError(t, store.Delete(ctx, hash))
	got, err = store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStoreUpsertAndInvalidRows(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 0)

	require.NoError(t, store.Set(ctx, "h", testutil.AnalysisJSON("Old")))
	require.NoError(t, store.Set(ctx, "h", testutil.AnalysisJSON("New")))

	got, err := store.Get(ctx, "h")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New", got.ProductDetails.Name)

	require.NoError(t, store.Set(ctx, "bad", testutil.AnalysisJSONWithout("X", "safetyAssessment")))
	got, err = store.Get(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}
