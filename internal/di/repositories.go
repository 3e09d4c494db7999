package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/ecopath/ecopath/internal/modules/redistribution"
)

// InitializeRepositories creates the data access layer on top of the opened databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.InventoryDB == nil {
		return fmt.Errorf("inventory database not initialized")
	}

	conn := container.InventoryDB.Conn()
	container.InventoryRepo = inventory.NewRepository(conn, log)
	container.RecommendationRepo = redistribution.NewRecommendationRepository(conn, log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
