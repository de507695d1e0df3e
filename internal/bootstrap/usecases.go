package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
	"github.com/mohammadpnp/client-import/internal/config"
	"github.com/mohammadpnp/client-import/internal/infrastructure/cache"
	"github.com/mohammadpnp/client-import/internal/infrastructure/repository"
)

// Infrastructure is what the process opened at startup. Redis and Events are
// optional; without them previews are not stored and no events are sent.
type Infrastructure struct {
	DB     *gorm.DB
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Events app.EventPublisher
}

type UseCases struct {
	Preview app.PreviewClients
	Import  app.ImportClients
}

func NewUseCases(infra Infrastructure, cfg config.Config, logger *zap.Logger) UseCases {
	source := repository.NewClientIndexRepository(infra.Pool)
	clients := repository.NewClientRepository(infra.DB)
	runs := repository.NewImportRunRepository(infra.DB)

	var snapshots app.PreviewStore
	if infra.Redis != nil {
		snapshots = cache.NewPreviewStore(infra.Redis, cfg.Redis.PreviewTTL)
	}

	appCfg := app.Config{MaxRows: cfg.Import.MaxRows}
	return UseCases{
		Preview: app.NewPreviewClients(source, snapshots, runs, logger.Named("preview"), appCfg),
		Import:  app.NewImportClients(source, clients, snapshots, runs, infra.Events, logger.Named("import"), appCfg),
	}
}
