// Package open builds the Store selected by database.driver.
package open

import (
	"context"
	"fmt"

	"study-plan/internal/config"
	"study-plan/internal/store"
	"study-plan/internal/store/memstore"
	"study-plan/internal/store/mongostore"
	"study-plan/internal/store/sqlstore"
)

func Store(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo, "":
		s, err := mongostore.Open(ctx, cfg.Database.Mongo.URI, cfg.Database.Mongo.DB)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMySQL:
		db, err := cfg.OpenGormDB()
		if err != nil {
			return nil, err
		}
		s, err := sqlstore.New(db)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
