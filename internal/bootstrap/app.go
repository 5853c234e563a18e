package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"pypln-web/internal/blob"
	"pypln-web/internal/config"
	"pypln-web/internal/mail"
	"pypln-web/internal/model"
	"pypln-web/internal/pipeline"
	"pypln-web/internal/platform/database"
	mongoClient "pypln-web/internal/platform/mongo"
	rabbitmqClient "pypln-web/internal/platform/rabbitmq"
	redisClient "pypln-web/internal/platform/redis"
	"pypln-web/internal/properties"
	"pypln-web/internal/repository"
	"pypln-web/internal/search"
	"pypln-web/internal/worker"
)

type propertyStore interface {
	properties.Store
	properties.Writer
}

type App struct {
	Config *config.Config
	Log    *slog.Logger

	DB     *gorm.DB
	Redis  *redis.Client
	Mongo  *mongo.Client
	MQConn *amqp.Connection

	Storage    blob.Storage
	Properties properties.Opener
	Pipeline   *pipeline.Client
	Mailer     mail.AdminMailer
	Index      *search.BleveIndex
	Indexer    *search.Indexer
	IndexLock  *search.RedisLock
	Metrics    *prometheus.Registry

	IndexRequests *search.RunRequests

	Users     *repository.UserRepository
	Corpora   *repository.CorpusRepository
	Documents *repository.DocumentRepository

	IndexWorker *worker.IndexWorker

	StartedAt time.Time
}

// New connects every backend named by cfg and migrates the schema.
// Resources opened before a failure are closed again.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *App, err error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Log: log, Metrics: prometheus.NewRegistry(), StartedAt: time.Now()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if a.DB, err = database.Open(ctx, cfg, log); err != nil {
		return nil, err
	}
	if err = model.Migrate(a.DB); err != nil {
		return nil, err
	}

	if a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ); err != nil {
		return nil, err
	}
	if cfg.Router.Enabled {
		if err = a.applyRouterConfig(ctx); err != nil {
			return nil, err
		}
	}

	if a.Redis, err = redisClient.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if needsMongo(cfg) {
		if a.Mongo, err = mongoClient.New(ctx, cfg.MongoDB.URI); err != nil {
			return nil, err
		}
	}

	if a.Storage, err = newStorage(ctx, cfg, a.Mongo); err != nil {
		return nil, err
	}
	store, err := newPropertyStore(cfg, a.Mongo, a.Redis)
	if err != nil {
		return nil, err
	}
	a.Properties = properties.StaticOpener(store)

	pipelineMetrics, err := pipeline.NewMetrics(a.Metrics)
	if err != nil {
		return nil, err
	}
	a.Pipeline = pipeline.NewClient(
		rabbitmqClient.NewPublisher(a.MQConn),
		store,
		pipeline.Queues{
			Default:        cfg.RabbitMQ.PipelineQueue,
			Indexing:       cfg.RabbitMQ.IndexingQueue,
			CorpusFreqDist: cfg.RabbitMQ.CorpusFreqDistQueue,
		},
		pipelineMetrics,
		log,
	)
	a.Mailer = mail.New(cfg.Mail, log)

	a.Users = repository.NewUserRepository(a.DB)
	a.Corpora = repository.NewCorpusRepository(a.DB)
	a.Documents = repository.NewDocumentRepository(a.DB)

	a.IndexLock = search.NewRedisLock(a.Redis, cfg.Search.LockKey, time.Duration(cfg.Search.LockTTLSeconds)*time.Second)
	a.IndexRequests = search.NewRunRequests(a.Redis, cfg.Search.RequestChannel)

	return a, nil
}

// OpenIndex opens the search index and builds the indexer and its worker.
// Only one process can hold the index; when another one does, OpenIndex
// fails with search.ErrIndexBusy after the configured timeout.
func (a *App) OpenIndex(out io.Writer) error {
	idx, err := search.OpenBleve(a.Config.Search.IndexPath, time.Duration(a.Config.Search.OpenTimeoutSeconds)*time.Second)
	if err != nil {
		return err
	}
	a.Index = idx
	a.Indexer = search.NewIndexer(a.Documents, a.Index, a.Properties, a.IndexLock, out, a.Log)
	a.IndexWorker = worker.NewIndexWorker(a.Indexer, time.Duration(a.Config.Search.UpdateIntervalSeconds)*time.Second, a.Log)
	return nil
}

// StartWorkers launches the background index worker of the index owner. It
// also serves run requests from pyplnctl.
func (a *App) StartWorkers(ctx context.Context) {
	if a.IndexWorker == nil {
		return
	}
	if runs, err := a.IndexRequests.Subscribe(ctx); err != nil {
		a.Log.Warn("index run requests unavailable", "error", err)
	} else {
		a.IndexWorker.Listen(runs)
	}
	a.IndexWorker.Start(ctx)
}

func needsMongo(cfg *config.Config) bool {
	switch cfg.Storage.Backend {
	case "gridfs", "base64", "":
		return true
	}
	return cfg.Properties.Backend != "redis"
}

func newStorage(ctx context.Context, cfg *config.Config, client *mongo.Client) (blob.Storage, error) {
	switch cfg.Storage.Backend {
	case "gridfs", "":
		return blob.NewGridFS(client.Database(cfg.MongoDB.Database), cfg.MongoDB.GridFSCollection)
	case "base64":
		return blob.NewBase64(client.Database(cfg.MongoDB.Database), cfg.MongoDB.GridFSCollection), nil
	case "minio":
		return blob.NewMinIO(ctx, cfg.Storage)
	case "local":
		return blob.NewLocal(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newPropertyStore(cfg *config.Config, client *mongo.Client, rdb *redis.Client) (propertyStore, error) {
	var store propertyStore
	switch cfg.Properties.Backend {
	case "mongodb", "":
		store = properties.NewMongoStore(client.Database(cfg.MongoDB.Database), cfg.MongoDB.AnalysisCollection)
	case "redis":
		store = properties.NewRedisStore(rdb)
	default:
		return nil, fmt.Errorf("unknown properties backend %q", cfg.Properties.Backend)
	}
	if cfg.Properties.CacheTTLSeconds > 0 {
		store = properties.NewCachedStore(store, time.Duration(cfg.Properties.CacheTTLSeconds)*time.Second)
	}
	return store, nil
}

func (a *App) Close() error {
	var errs []error
	if a.IndexWorker != nil {
		a.IndexWorker.Close()
	}
	if a.Index != nil {
		errs = append(errs, a.Index.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.Mongo.Disconnect(ctx))
		cancel()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		errs = append(errs, a.MQConn.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
