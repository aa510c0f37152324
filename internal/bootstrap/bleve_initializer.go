package bootstrap

import (
	"context"
	"fmt"

	bleveRepositories "book-inventory-backend/bleve/repositories"
	"book-inventory-backend/inventory/repositories"

	"go.uber.org/zap"
)

// IndexBleveData rebuilds the inventory search index from the store.
func IndexBleveData(
	ctx context.Context,
	inventoryRepo repositories.InventoryRepository,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
	logger *zap.Logger,
) error {
	// Delete the index first so removed items do not linger
	if err := bleveRepo.ResetIndex(); err != nil {
		return fmt.Errorf("error resetting inventory index: %w", err)
	}

	items, err := inventoryRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("error fetching inventory for indexing: %w", err)
	}

	if err := bleveRepo.IndexExistingItems(items); err != nil {
		return fmt.Errorf("failed to index inventory: %w", err)
	}

	logger.Info("Inventory search index rebuilt", zap.Int("items", len(items)))
	return nil
}
