package wire

import (
	"context"
	"fmt"
	"os"

	"z-novel-writer/internal/application/library"
	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/application/vectorize"
	"z-novel-writer/internal/application/writing"
	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/repository"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/infrastructure/llm"
	"z-novel-writer/internal/infrastructure/messaging"
	"z-novel-writer/internal/infrastructure/persistence/bolt"
	"z-novel-writer/internal/infrastructure/persistence/postgres"
	"z-novel-writer/internal/infrastructure/persistence/redis"
	"z-novel-writer/internal/interfaces/http/handler"
	"z-novel-writer/internal/interfaces/http/middleware"
	"z-novel-writer/internal/workflow/prompt"
	"z-novel-writer/pkg/logger"
)

// Storage 书库存储，按 storage.driver 选择 bbolt 或 PostgreSQL
type Storage struct {
	Driver     string
	Books      repository.BookRepository
	Characters repository.CharacterRepository
	Chapters   repository.ChapterRepository
	Health     handler.HealthChecker
}

// ProvideStorage 提供书库存储
func ProvideStorage(ctx context.Context, cfg *config.Config) (*Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		client, err := postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = client.Close()
		}
		return &Storage{
			Driver:     config.StorageDriverPostgres,
			Books:      postgres.NewBookRepository(client),
			Characters: postgres.NewCharacterRepository(client),
			Chapters:   postgres.NewChapterRepository(client),
			Health:     client,
		}, cleanup, nil

	case config.StorageDriverBolt:
		client, err := bolt.NewClient(&cfg.Storage.Bolt)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error(ctx, "failed to close bolt store", err)
			}
		}
		return &Storage{
			Driver:     config.StorageDriverBolt,
			Books:      bolt.NewBookRepository(client),
			Characters: bolt.NewCharacterRepository(client),
			Chapters:   bolt.NewChapterRepository(client),
			Health:     client,
		}, cleanup, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

// ProvideRedisClientOptional 提供 Redis 客户端，未启用时返回 nil
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		logger.Info(ctx, "redis disabled, rate limiting off and embedding runs in-process")
		return nil, func() {}, nil
	}
	return ProvideRedisClient(cfg)
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter 提供限流器，Redis 未启用时为 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideMessagingProducer 提供消息生产者，Redis 未启用时为 nil
func ProvideMessagingProducer(client *redis.Client, cfg *config.Config) *messaging.Producer {
	if client == nil {
		return nil
	}
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	return messaging.NewProducer(client.Redis(), int64(maxLen))
}

// ProvideAIConfig 服务端默认 AI 配置
func ProvideAIConfig(cfg *config.Config) service.AIConfig {
	return service.AIConfig{
		APIKey:          cfg.AI.APIKey,
		APIURL:          cfg.AI.APIURL,
		Model:           cfg.AI.Model,
		EmbeddingAPIKey: cfg.AI.EmbeddingAPIKey,
		EmbeddingAPIURL: cfg.AI.EmbeddingAPIURL,
		EmbeddingModel:  cfg.AI.EmbeddingModel,
	}
}

// ProvideSearchOptions 默认检索参数
func ProvideSearchOptions(cfg *config.Config) retrieval.SearchOptions {
	return retrieval.SearchOptions{
		WorldviewThreshold: cfg.Retrieval.WorldviewThreshold,
		CharacterThreshold: cfg.Retrieval.CharacterThreshold,
		VectorWeight:       cfg.Retrieval.VectorWeight,
		KeywordWeight:      cfg.Retrieval.KeywordWeight,
	}
}

// ProvideEinoFactory 提供 Eino 模型工厂
func ProvideEinoFactory(cfg *config.Config) *llm.EinoFactory {
	return llm.NewEinoFactory(cfg.AI.Timeout)
}

// ProvideLLMClient 提供 LLM 客户端
func ProvideLLMClient(cfg *config.Config, factory *llm.EinoFactory, prompts *prompt.Registry) *llm.Client {
	return llm.NewClient(factory, prompts, llm.Options{
		Temperature:        cfg.AI.Temperature,
		MaxTokens:          cfg.AI.MaxTokens,
		KeywordTemperature: cfg.AI.KeywordTemperature,
		KeywordMaxTokens:   cfg.AI.KeywordMaxTokens,
	})
}

// ProvideVectorizeService 提供向量化服务
func ProvideVectorizeService(store *Storage, embedder service.EmbeddingClient, aiConfig service.AIConfig) *vectorize.Service {
	return vectorize.NewService(store.Books, store.Characters, store.Chapters, embedder, aiConfig)
}

// ProvideDispatcher Redis 可用时走队列，否则在进程内异步执行
func ProvideDispatcher(ctx context.Context, svc *vectorize.Service, producer *messaging.Producer) (vectorize.Dispatcher, func()) {
	if producer != nil {
		return vectorize.NewQueueDispatcher(producer), func() {}
	}
	d := vectorize.NewInlineDispatcher(svc, true)
	cleanup := func() {
		logger.Info(ctx, "waiting for in-process embedding jobs")
		d.Wait()
	}
	return d, cleanup
}

// ProvideSyncDispatcher 同步执行向量化（CLI）
func ProvideSyncDispatcher(svc *vectorize.Service) vectorize.Dispatcher {
	return vectorize.NewInlineDispatcher(svc, false)
}

// ProvideLibraryService 提供书库服务
func ProvideLibraryService(store *Storage, dispatcher vectorize.Dispatcher) *library.Service {
	return library.NewService(store.Books, store.Characters, store.Chapters, dispatcher)
}

// ProvideRetrievalEngine 提供检索引擎
func ProvideRetrievalEngine(store *Storage, opts retrieval.SearchOptions) *retrieval.Engine {
	return retrieval.NewEngine(store.Books, store.Characters, opts)
}

// ProvideQuerier 提供按模式检索的查询器
func ProvideQuerier(engine *retrieval.Engine, client *llm.Client) *retrieval.Querier {
	return retrieval.NewQuerier(engine, client, client)
}

// ProvideWritingService 提供写作服务
func ProvideWritingService(
	cfg *config.Config,
	store *Storage,
	engine *retrieval.Engine,
	client *llm.Client,
	prompts *prompt.Registry,
	opts retrieval.SearchOptions,
) *writing.Service {
	return writing.NewService(engine, store.Chapters, client, client, client, prompts, writing.Options{
		RecentChapters: cfg.Retrieval.RecentChapters,
		ContextTimeout: cfg.Retrieval.ContextTimeout,
		Search:         opts,
	})
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, store *Storage, redisClient *redis.Client) *handler.HealthHandler {
	deps := []handler.Dependency{
		{Name: store.Driver, Checker: store.Health, Required: true},
	}
	if redisClient != nil {
		// 队列模式下 Redis 不可用会导致向量化任务丢失
		deps = append(deps, handler.Dependency{Name: "redis", Checker: redisClient, Required: true})
	}
	return handler.NewHealthHandler(cfg.App.Version, deps...)
}

// ProvideConsumer 提供向量化任务消费者
func ProvideConsumer(client *redis.Client, cfg *config.Config) *messaging.Consumer {
	rs := cfg.Messaging.RedisStream
	return messaging.NewConsumer(client.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamEmbeddingJobs,
		Group:         messaging.ConsumerGroupEmbedWorker,
		ConsumerName:  consumerName(),
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
	})
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "embed-worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// Worker embed-worker 依赖
type Worker struct {
	Consumer   *messaging.Consumer
	Vectorizer *vectorize.Service
}

// Toolkit novelctl 依赖
type Toolkit struct {
	Library  *library.Service
	Querier  *retrieval.Querier
	Writing  *writing.Service
	LLM      *llm.Client
	AIConfig service.AIConfig
}
