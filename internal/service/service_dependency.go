package service

import (
	"context"
	"fmt"

	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/models"
)

// syncDependencies is the static dependency table. Categories and
// Persons stand alone; Expenses and Incomes reference them and must wait
// until both are initialized.
var syncDependencies = map[models.SyncType]models.SyncDependency{
	models.SyncTypeCategories: {
		Type:     models.SyncTypeCategories,
		Priority: models.PriorityCritical,
	},
	models.SyncTypePersons: {
		Type:     models.SyncTypePersons,
		Priority: models.PriorityCritical,
	},
	models.SyncTypeExpenses: {
		Type:         models.SyncTypeExpenses,
		Priority:     models.PriorityDependent,
		Dependencies: []models.SyncType{models.SyncTypeCategories, models.SyncTypePersons},
	},
	models.SyncTypeIncomes: {
		Type:         models.SyncTypeIncomes,
		Priority:     models.PriorityDependent,
		Dependencies: []models.SyncType{models.SyncTypeCategories, models.SyncTypePersons},
	},
	models.SyncTypeAll: {
		Type:     models.SyncTypeAll,
		Priority: models.PriorityCritical,
	},
}

// DependencyFor returns the static dependency entry for a sync type.
func DependencyFor(t models.SyncType) models.SyncDependency {
	return syncDependencies[t]
}

type dependencyManager struct {
	prefs store.PreferenceRepository
}

func NewDependencyManager(prefs store.PreferenceRepository) DependencyManager {
	return &dependencyManager{prefs: prefs}
}

func (d *dependencyManager) CanSync(ctx context.Context, t models.SyncType, userID string) (bool, error) {
	dep, ok := syncDependencies[t]
	if !ok {
		return false, fmt.Errorf("can sync: unknown sync type %v", t)
	}

	for _, required := range dep.Dependencies {
		initialized, err := d.IsInitialized(ctx, required, userID)
		if err != nil {
			return false, err
		}
		if !initialized {
			return false, nil
		}
	}

	return true, nil
}

func (d *dependencyManager) IsInitialized(ctx context.Context, t models.SyncType, userID string) (bool, error) {
	dep, ok := syncDependencies[t]
	if !ok {
		return false, fmt.Errorf("is initialized: unknown sync type %v", t)
	}

	// Dependent types are initialized exactly when all their
	// dependencies are; their own flag is only used for bootstrap
	// ordering and the All cascade.
	if dep.Priority == models.PriorityDependent {
		for _, required := range dep.Dependencies {
			initialized, err := d.hasFlag(ctx, required, userID)
			if err != nil {
				return false, err
			}
			if !initialized {
				return false, nil
			}
		}
		return true, nil
	}

	return d.hasFlag(ctx, t, userID)
}

func (d *dependencyManager) MarkAsInitialized(ctx context.Context, t models.SyncType, userID string) error {
	dep, ok := syncDependencies[t]
	if !ok {
		return fmt.Errorf("mark as initialized: unknown sync type %v", t)
	}

	if err := d.prefs.SetBool(ctx, initFlagKey(t, userID), true); err != nil {
		return fmt.Errorf("mark %s initialized: %w", t, err)
	}

	if dep.Priority != models.PriorityDependent {
		return nil
	}

	// When the sibling Dependent type is already done, the initial full
	// sync is complete for this account.
	for _, sibling := range dependentSiblings(t) {
		done, err := d.hasFlag(ctx, sibling, userID)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
	}

	if err := d.prefs.SetBool(ctx, initFlagKey(models.SyncTypeAll, userID), true); err != nil {
		return fmt.Errorf("mark %s initialized: %w", models.SyncTypeAll, err)
	}
	return nil
}

func (d *dependencyManager) GetPendingInitializations(ctx context.Context, userID string) ([]models.SyncType, error) {
	var pending []models.SyncType

	for _, t := range models.ConcreteSyncTypes {
		done, err := d.hasFlag(ctx, t, userID)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, t)
		}
	}

	return pending, nil
}

func (d *dependencyManager) ResetInitialization(ctx context.Context, userID string) error {
	types := append([]models.SyncType{}, models.ConcreteSyncTypes...)
	types = append(types, models.SyncTypeAll)

	for _, t := range types {
		if err := d.prefs.Delete(ctx, initFlagKey(t, userID)); err != nil {
			return fmt.Errorf("reset initialization for %s: %w", t, err)
		}
	}

	return nil
}

func (d *dependencyManager) hasFlag(ctx context.Context, t models.SyncType, userID string) (bool, error) {
	value, err := d.prefs.GetBool(ctx, initFlagKey(t, userID))
	if err != nil {
		return false, fmt.Errorf("read init flag for %s: %w", t, err)
	}
	return value, nil
}

func dependentSiblings(t models.SyncType) []models.SyncType {
	var siblings []models.SyncType
	for _, other := range models.ConcreteSyncTypes {
		if other == t {
			continue
		}
		if syncDependencies[other].Priority == models.PriorityDependent {
			siblings = append(siblings, other)
		}
	}
	return siblings
}
