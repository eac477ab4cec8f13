package cmd

import (
	"context"
	"fmt"

	"parent-reconciler/core/config"
	"parent-reconciler/core/database"
	"parent-reconciler/core/search"

	"go.uber.org/zap"
)

// backend is a record store client that can report its own health.
type backend interface {
	search.Client
	search.HealthChecker
}

// connect builds the configured record store client and waits for it to become healthy.
// A store that answers but never reports healthy is only logged; an unreachable store
// aborts.
func connect(ctx context.Context, cfg *config.Config, l *zap.Logger) (backend, func(), error) {
	var (
		b       backend
		release = func() {}
		target  string
	)

	switch cfg.Search.Driver {
	case search.DriverElasticsearch, "":
		es, err := search.NewElastic(cfg.Search, l)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
		}
		b = es
		target = fmt.Sprintf("cluster [%s] at %s", cfg.Search.ClusterName, cfg.Search.URL)
	case search.DriverSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		b = database.NewSQLClient(db)
		release = func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		target = fmt.Sprintf("database %s at %s:%d", cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)
	default:
		return nil, nil, fmt.Errorf("unknown search driver %q", cfg.Search.Driver)
	}

	l.Debug("Connecting to record store", zap.String("driver", cfg.Search.Driver), zap.String("target", target))
	healthy, err := search.CheckHealth(ctx, b, cfg.Search.HealthAttempts, cfg.Search.HealthDelay, l)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("couldn't connect to %s: %w", target, err)
	}
	if !healthy {
		l.Warn("Record store is not accessible", zap.String("target", target))
	} else {
		l.Debug("Record store connection was successfully created", zap.String("target", target))
	}
	return b, release, nil
}
