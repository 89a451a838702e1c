//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"z-novel-writer/internal/application/writing"
	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/infrastructure/llm"
	"z-novel-writer/internal/interfaces/http/handler"
	"z-novel-writer/internal/interfaces/http/router"
	"z-novel-writer/internal/workflow/prompt"
)

// InitializeApp 初始化 HTTP 服务（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		ProvideRedisClientOptional,
		ProvideRateLimiter,
		ProvideMessagingProducer,
		ProvideDispatcher,
		LLMSet,
		CoreSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化向量化任务消费者
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		StorageSet,
		ProvideRedisClient,
		ProvideConsumer,
		LLMSet,
		ProvideVectorizeService,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// InitializeToolkit 初始化命令行工具依赖，向量化同步执行
func InitializeToolkit(ctx context.Context, cfg *config.Config) (*Toolkit, func(), error) {
	wire.Build(
		StorageSet,
		ProvideSyncDispatcher,
		LLMSet,
		CoreSet,
		wire.Struct(new(Toolkit), "*"),
	)
	return nil, nil, nil
}

// StorageSet 书库存储提供者集合
var StorageSet = wire.NewSet(
	ProvideStorage,
)

// LLMSet 模型客户端提供者集合
var LLMSet = wire.NewSet(
	prompt.NewRegistry,
	ProvideEinoFactory,
	ProvideLLMClient,
	ProvideAIConfig,
	wire.Bind(new(service.EmbeddingClient), new(*llm.Client)),
	wire.Bind(new(service.KeywordExtractor), new(*llm.Client)),
	wire.Bind(new(service.CompletionClient), new(*llm.Client)),
)

// CoreSet 应用服务提供者集合
var CoreSet = wire.NewSet(
	ProvideSearchOptions,
	ProvideVectorizeService,
	ProvideLibraryService,
	ProvideRetrievalEngine,
	ProvideQuerier,
	ProvideWritingService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewBookHandler,
	handler.NewCharacterHandler,
	handler.NewChapterHandler,
	handler.NewSearchHandler,
	handler.NewWritingHandler,
	handler.NewAIHandler,
	wire.Bind(new(handler.Prober), new(*llm.Client)),
	wire.Bind(new(handler.Generator), new(*writing.Service)),
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
