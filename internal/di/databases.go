package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/config"
	"github.com/ecopath/ecopath/internal/database"
)

// InitializeDatabases opens inventory.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// inventory.db holds the stock ledger, so it gets the maximum-safety profile
	inventoryDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileLedger,
		Name:    "inventory",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inventory database: %w", err)
	}

	if err := inventoryDB.Migrate(); err != nil {
		inventoryDB.Close()
		return nil, fmt.Errorf("failed to migrate inventory database: %w", err)
	}
	container.InventoryDB = inventoryDB

	log.Info().
		Str("path", inventoryDB.Path()).
		Str("profile", string(inventoryDB.Profile())).
		Msg("Database initialized")

	return container, nil
}
