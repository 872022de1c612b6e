package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/config"
	"github.com/dunamismax/sitecms/internal/domain"
)

// Collections lists every collection the site uses.
var Collections = []string{
	domain.CollectionServices,
	domain.CollectionTeam,
	domain.CollectionTestimonials,
	domain.CollectionProjects,
	domain.CollectionJobs,
	domain.CollectionJobApplications,
	domain.CollectionContactMessages,
	domain.CollectionServiceRequests,
	domain.CollectionSettings,
}

// Open connects the store selected by cfg.Driver. The returned close func
// releases the underlying connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (DocumentStore, func(context.Context) error, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Warn("using in-memory store, data will not survive restarts")
		return NewMemoryStore(), func(context.Context) error { return nil }, nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("postgres driver requires POSTGRES_DSN")
		}
		pg, err := NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected document store", zap.String("driver", cfg.Driver))
		return pg, func(context.Context) error { return pg.Close() }, nil
	case config.DriverMongo:
		if cfg.MongoURI == "" {
			return nil, nil, fmt.Errorf("mongo driver requires MONGO_URI")
		}
		mg, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		if err := mg.EnsureIndexes(ctx, Collections...); err != nil {
			_ = mg.Close(ctx)
			return nil, nil, err
		}
		logger.Info("connected document store",
			zap.String("driver", cfg.Driver),
			zap.String("database", cfg.MongoDB),
		)
		return mg, mg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
