package cmd

import (
	"context"
	"fmt"

	config "task-manager.com/task-manager/internal/configs"
	repository "task-manager.com/task-manager/internal/repositories"
)

type stores struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	close func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := config.NewSQLiteDatabase(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			tasks: repository.NewTaskRepository(db),
			users: repository.NewUserRepository(db),
			close: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case config.StoreMongo:
		db, err := config.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}

		tasks := repository.NewMongoTaskRepository(db)
		users := repository.NewMongoUserRepository(db)
		if err := tasks.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, err
		}

		return &stores{
			tasks: tasks,
			users: users,
			close: db.Client().Disconnect,
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
