package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
	inmemdb "github.com/trezcool/sunrise/storage/database/inmem"
	sqlxrepos "github.com/trezcool/sunrise/storage/database/sqlx"
)

const (
	EnginePostgres = "postgres"
	EngineInMem    = "inmem"
)

// Backend is the storage the apps run on. DB is nil for the in-memory engine.
type Backend struct {
	Store store.Store
	Users user.Repository
	DB    *sqlx.DB
}

func (b Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// Setup opens the configured engine. A postgres database is created when missing,
// then migrated if migrate is set.
func Setup(ctx context.Context, conf *core.Config, reg *schema.Registry, migrate bool) (Backend, error) {
	switch conf.Database.Engine {
	case EngineInMem:
		db := inmemdb.Open(reg)
		return Backend{Store: inmemdb.NewStore(db), Users: inmemdb.NewUserRepository(db)}, nil

	case EnginePostgres, "":
		if err := CreateIfNotExist(conf); err != nil {
			return Backend{}, err
		}
		db, err := Open(conf)
		if err != nil {
			return Backend{}, err
		}
		if migrate {
			if err = Migrate(ctx, db); err != nil {
				_ = db.Close()
				return Backend{}, err
			}
		}
		return Backend{Store: sqlxrepos.NewStore(db, reg), Users: sqlxrepos.NewUserRepository(db), DB: db}, nil

	default:
		return Backend{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}
