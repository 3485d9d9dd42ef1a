package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqi-m/unique-plant-sync/models"
)

const testUser = "user-1"

func TestCanSync_StandaloneTypesAlwaysAllowed(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	for _, typ := range []models.SyncType{models.SyncTypeCategories, models.SyncTypePersons, models.SyncTypeAll} {
		ok, err := deps.CanSync(ctx, typ, testUser)
		require.NoError(t, err, "type %s", typ)
		assert.True(t, ok, "type %s", typ)
	}
}

func TestCanSync_DependentTypesWaitForBothParents(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	ok, err := deps.CanSync(ctx, models.SyncTypeExpenses, testUser)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypeCategories, testUser))

	ok, err = deps.CanSync(ctx, models.SyncTypeExpenses, testUser)
	require.NoError(t, err)
	assert.False(t, ok, "one of two dependencies is not enough")

	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypePersons, testUser))

	for _, typ := range []models.SyncType{models.SyncTypeExpenses, models.SyncTypeIncomes} {
		ok, err = deps.CanSync(ctx, typ, testUser)
		require.NoError(t, err)
		assert.True(t, ok, "type %s", typ)
	}
}

func TestCanSync_UnknownType(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())

	_, err := deps.CanSync(context.Background(), models.SyncTypeUnknown, testUser)
	require.Error(t, err)
}

func TestIsInitialized_DependentTypesDeriveFromParents(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypeCategories, testUser))
	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypePersons, testUser))

	// Both parents are done, so dependent types count as initialized even
	// though their own bootstrap never ran.
	ok, err := deps.IsInitialized(ctx, models.SyncTypeExpenses, testUser)
	require.NoError(t, err)
	assert.True(t, ok)

	// The bootstrap pending list still tracks their own flags.
	pending, err := deps.GetPendingInitializations(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []models.SyncType{models.SyncTypeExpenses, models.SyncTypeIncomes}, pending)
}

func TestMarkAsInitialized_CascadesToAll(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	for _, typ := range []models.SyncType{
		models.SyncTypeCategories,
		models.SyncTypePersons,
		models.SyncTypeExpenses,
	} {
		require.NoError(t, deps.MarkAsInitialized(ctx, typ, testUser))
	}

	all, err := deps.IsInitialized(ctx, models.SyncTypeAll, testUser)
	require.NoError(t, err)
	assert.False(t, all, "incomes has not finished yet")

	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypeIncomes, testUser))

	all, err = deps.IsInitialized(ctx, models.SyncTypeAll, testUser)
	require.NoError(t, err)
	assert.True(t, all)
}

func TestInitializationFlags_ArePerUser(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypeCategories, testUser))

	ok, err := deps.IsInitialized(ctx, models.SyncTypeCategories, "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetPendingInitializations_BootstrapOrder(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	pending, err := deps.GetPendingInitializations(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, models.ConcreteSyncTypes, pending)

	require.NoError(t, deps.MarkAsInitialized(ctx, models.SyncTypePersons, testUser))

	pending, err = deps.GetPendingInitializations(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []models.SyncType{
		models.SyncTypeCategories,
		models.SyncTypeExpenses,
		models.SyncTypeIncomes,
	}, pending)
}

func TestResetInitialization(t *testing.T) {
	deps := NewDependencyManager(newFakePrefs())
	ctx := context.Background()

	for _, typ := range models.ConcreteSyncTypes {
		require.NoError(t, deps.MarkAsInitialized(ctx, typ, testUser))
	}

	require.NoError(t, deps.ResetInitialization(ctx, testUser))

	pending, err := deps.GetPendingInitializations(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, models.ConcreteSyncTypes, pending)

	all, err := deps.IsInitialized(ctx, models.SyncTypeAll, testUser)
	require.NoError(t, err)
	assert.False(t, all)
}

func TestDependencyFor_PriorityTable(t *testing.T) {
	assert.Equal(t, models.PriorityCritical, DependencyFor(models.SyncTypeCategories).Priority)
	assert.Equal(t, models.PriorityCritical, DependencyFor(models.SyncTypePersons).Priority)
	assert.Equal(t, models.PriorityDependent, DependencyFor(models.SyncTypeExpenses).Priority)
	assert.Equal(t, models.PriorityDependent, DependencyFor(models.SyncTypeIncomes).Priority)

	assert.ElementsMatch(t,
		[]models.SyncType{models.SyncTypeCategories, models.SyncTypePersons},
		DependencyFor(models.SyncTypeIncomes).Dependencies,
	)
}
