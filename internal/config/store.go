package config

import (
	"context"
	"fmt"
	"os"

	"todo-api/internal/domain"
	mongostore "todo-api/internal/repository/mongo"
	"todo-api/internal/repository/postgres"
	"todo-api/internal/repository/sqlite"
)

// CreateStore opens the storage backend selected by the configuration
func CreateStore(ctx context.Context, config *Config) (domain.Store, error) {
	db := config.Database

	switch db.Driver {
	case DriverSQLite:
		dbPath := config.GetDatabasePath()
		if dbPath != ":memory:" {
			if err := os.MkdirAll(db.Dir, os.FileMode(db.DirPermissions)); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		store, err := sqlite.NewWithOptions(ctx, dbPath, sqlite.Options{
			QueryTimeout: db.QueryTimeout,
			WriteTimeout: db.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, nil

	case DriverPostgres:
		store, err := postgres.New(ctx, db.DSN, postgres.Options{
			QueryTimeout:    db.QueryTimeout,
			WriteTimeout:    db.WriteTimeout,
			ConnectAttempts: db.ConnectAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return store, nil

	case DriverMongo:
		store, err := mongostore.New(ctx, db.MongoURI, db.MongoDatabase, mongostore.Options{
			QueryTimeout:    db.QueryTimeout,
			WriteTimeout:    db.WriteTimeout,
			ConnectAttempts: db.ConnectAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		return store, nil
	}

	return nil, &ConfigError{Field: "database.driver", Message: fmt.Sprintf("unsupported driver %q", db.Driver)}
}
