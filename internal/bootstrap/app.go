package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "legalai-assistant/internal/app"
	"legalai-assistant/internal/cache"
	"legalai-assistant/internal/config"
	"legalai-assistant/internal/model"
	mysqlClient "legalai-assistant/internal/platform/mysql"
	rabbitmqClient "legalai-assistant/internal/platform/rabbitmq"
	redisClient "legalai-assistant/internal/platform/redis"
	"legalai-assistant/internal/repository"
	"legalai-assistant/internal/worker"
)

type App struct {
	Config *config.Config
	Redis  *redis.Client    // nil with the memory session backend
	MySQL  *gorm.DB         // nil unless the audit trail is enabled
	MQConn *amqp.Connection // nil unless the audit trail is enabled

	Sessions       appsvc.SessionStore
	Conversations  *repository.ConversationRepository
	AuditRepo      *repository.AuditRepository
	AuditPublisher *rabbitmqClient.AuditPublisher
	AuditWorker    *worker.AuditPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	app := &App{
		Config:        cfg,
		Conversations: repository.NewConversationRepository(),
		StartedAt:     time.Now(),
	}

	defaultTTL := time.Duration(cfg.Session.DefaultTTLMinutes) * time.Minute
	switch cfg.Session.Backend {
	case "memory":
		app.Sessions = cache.NewMemorySessionStore()
	default:
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		app.Redis = redisCli
		app.Sessions = cache.NewRedisSessionStore(redisCli, defaultTTL)
	}

	if cfg.Audit.Enabled {
		mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		if err := mysqlDB.AutoMigrate(&model.AuditRecord{}); err != nil {
			return nil, fmt.Errorf("auto migrate audit table failed: %w", err)
		}
		app.MySQL = mysqlDB

		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		app.MQConn = mqConn

		app.AuditRepo = repository.NewAuditRepository(mysqlDB)
		app.AuditPublisher = rabbitmqClient.NewAuditPublisher(mqConn, cfg.Audit.Queue)
		app.AuditWorker = worker.NewAuditPersistWorker(mqConn, app.AuditRepo, cfg.Audit.Queue)
		if err := app.AuditWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start audit worker failed: %w", err)
		}
	}

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
