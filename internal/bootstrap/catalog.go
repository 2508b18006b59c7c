package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/config"
	"github.com/cardtycoon/cardtycoon/internal/database/postgres"
)

// LoadCatalog loads and validates the catalog file named by configuration.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	loader := catalog.NewLoader()
	catCfg, err := loader.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := loader.Validate(catCfg); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	cat, err := catalog.New(catCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	slog.Info("Catalog loaded",
		"path", cfg.CatalogPath,
		"cards", cat.TotalCards(),
		"collections", len(cat.Collections()))
	return cat, nil
}

// SyncCatalog upserts the catalog's card definitions into the database.
func SyncCatalog(ctx context.Context, repo *postgres.LedgerRepository, cat *catalog.Catalog) error {
	cards := cat.AllCards()
	if err := repo.SyncCards(ctx, cards); err != nil {
		return fmt.Errorf("failed to sync catalog to database: %w", err)
	}
	slog.Info("Catalog synced to database", "cards", len(cards))
	return nil
}
