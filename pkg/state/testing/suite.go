package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittoview/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite tests the state.Store contract. It is shared by every
// implementation so memory and badger stores behave identically.
type StoreTestSuite struct {
	// NewStore creates a fresh, empty store for each test.
	NewStore func() state.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("GetMissing", suite.TestGetMissing)
	test.Run("SetGet", suite.TestSetGet)
	test.Run("Overwrite", suite.TestOverwrite)
	test.Run("Delete", suite.TestDelete)
	test.Run("Closed", suite.TestClosed)
	test.Run("CancelledContext", suite.TestCancelledContext)
}

func (suite *StoreTestSuite) newStore(test *testing.T) state.Store {
	store := suite.NewStore()
	test.Cleanup(func() { _ = store.Close() })
	return store
}

// TestGetMissing verifies absent keys report ok=false without error.
func (suite *StoreTestSuite) TestGetMissing(test *testing.T) {
	store := suite.newStore(test)

	v, ok, err := store.Get(context.Background(), state.KeyLastFolder)
	require.NoError(test, err)
	assert.False(test, ok)
	assert.Empty(test, v)
}

func (suite *StoreTestSuite) TestSetGet(test *testing.T) {
	store := suite.newStore(test)
	ctx := context.Background()

	for i, key := range state.Keys {
		require.NoError(test, store.Set(ctx, key, string(rune('a'+i))))
	}

	for i, key := range state.Keys {
		v, ok, err := store.Get(ctx, key)
		require.NoError(test, err)
		assert.True(test, ok, "key %s", key)
		assert.Equal(test, string(rune('a'+i)), v)
	}
}

// TestOverwrite verifies last-writer-wins.
func (suite *StoreTestSuite) TestOverwrite(test *testing.T) {
	store := suite.newStore(test)
	ctx := context.Background()

	require.NoError(test, store.Set(ctx, state.KeyOpenPage, "3"))
	require.NoError(test, store.Set(ctx, state.KeyOpenPage, "7"))

	v, _, err := store.Get(ctx, state.KeyOpenPage)
	require.NoError(test, err)
	assert.Equal(test, "7", v)
}

// TestDelete verifies multi-key delete and that missing keys are ignored.
func (suite *StoreTestSuite) TestDelete(test *testing.T) {
	store := suite.newStore(test)
	ctx := context.Background()

	require.NoError(test, store.Set(ctx, state.KeyOpenItem, "doc"))
	require.NoError(test, store.Set(ctx, state.KeyOpenPage, "2"))
	require.NoError(test, store.Set(ctx, state.KeyLastFolder, "f"))

	require.NoError(test, store.Delete(ctx, state.KeyOpenItem, state.KeyOpenPage, state.KeySortField))

	_, ok, err := store.Get(ctx, state.KeyOpenItem)
	require.NoError(test, err)
	assert.False(test, ok)

	_, ok, err = store.Get(ctx, state.KeyOpenPage)
	require.NoError(test, err)
	assert.False(test, ok)

	v, ok, err := store.Get(ctx, state.KeyLastFolder)
	require.NoError(test, err)
	assert.True(test, ok, "unrelated keys survive")
	assert.Equal(test, "f", v)
}

func (suite *StoreTestSuite) TestClosed(test *testing.T) {
	store := suite.NewStore()
	require.NoError(test, store.Close())

	ctx := context.Background()
	_, _, err := store.Get(ctx, state.KeyLastFolder)
	assert.ErrorIs(test, err, state.ErrClosed)
	assert.ErrorIs(test, store.Set(ctx, state.KeyLastFolder, "x"), state.ErrClosed)
	assert.ErrorIs(test, store.Delete(ctx, state.KeyLastFolder), state.ErrClosed)
	assert.NoError(test, store.Close(), "second Close")
}

func (suite *StoreTestSuite) TestCancelledContext(test *testing.T) {
	store := suite.newStore(test)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(test, store.Set(ctx, state.KeyLastFolder, "x"), context.Canceled)
}
