package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"gnosis-influencer/internal/cache"
	"gnosis-influencer/internal/config"
	"gnosis-influencer/internal/model"
	"gnosis-influencer/internal/platform/logger"
	mysqlClient "gnosis-influencer/internal/platform/mysql"
	rabbitmqClient "gnosis-influencer/internal/platform/rabbitmq"
	redisClient "gnosis-influencer/internal/platform/redis"
	"gnosis-influencer/internal/repository"
	"gnosis-influencer/internal/worker"
)

type App struct {
	Config         *config.Config
	Log            *logrus.Logger
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	PersonaCache   *cache.PersonaCache
	ReplyPublisher *rabbitmqClient.ReplyEventPublisher
	TouchWorker    *worker.ConversationTouchWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logger.New(cfg.App.Env)

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	personaCache := cache.NewPersonaCache(redisCli, time.Duration(cfg.Redis.PersonaTTLSeconds)*time.Second)

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	replyPublisher := rabbitmqClient.NewReplyEventPublisher(mqConn, cfg.RabbitMQ.ReplyEventQueue)

	conversationRepo := repository.NewConversationRepository(mysqlDB)
	touchWorker := worker.NewConversationTouchWorker(mqConn, conversationRepo, cfg.RabbitMQ.ReplyEventQueue, log)
	if err := touchWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start conversation touch worker failed: %w", err)
	}

	return &App{
		Config:         cfg,
		Log:            log,
		MySQL:          mysqlDB,
		Redis:          redisCli,
		MQConn:         mqConn,
		PersonaCache:   personaCache,
		ReplyPublisher: replyPublisher,
		TouchWorker:    touchWorker,
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.TouchWorker != nil {
		a.TouchWorker.Close()
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
