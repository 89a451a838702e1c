package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	embopenai "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"

	"z-novel-writer/internal/domain/service"
)

type chatKey struct {
	apiKey, baseURL, model string
}

type embedKey struct {
	apiKey, baseURL, model string
}

// EinoFactory 按 AIConfig 缓存 Eino ChatModel / Embedder 实例
type EinoFactory struct {
	timeout   time.Duration
	models    map[chatKey]model.BaseChatModel
	embedders map[embedKey]embedding.Embedder
	mu        sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(timeout time.Duration) *EinoFactory {
	return &EinoFactory{
		timeout:   timeout,
		models:    make(map[chatKey]model.BaseChatModel),
		embedders: make(map[embedKey]embedding.Embedder),
	}
}

// ChatModel 获取配置对应的 ChatModel，cfg 需已 Normalize
func (f *EinoFactory) ChatModel(ctx context.Context, cfg service.AIConfig) (model.BaseChatModel, error) {
	key := chatKey{apiKey: cfg.APIKey, baseURL: cfg.APIURL, model: cfg.Model}

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.APIURL,
		Model:   cfg.Model,
		Timeout: f.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", cfg.Model, err)
	}

	f.models[key] = chatModel
	return chatModel, nil
}

// Embedder 获取配置对应的 Embedder，cfg 需已 Normalize
func (f *EinoFactory) Embedder(ctx context.Context, cfg service.AIConfig) (embedding.Embedder, error) {
	key := embedKey{apiKey: cfg.EmbeddingAPIKey, baseURL: cfg.EmbeddingAPIURL, model: cfg.EmbeddingModel}

	f.mu.RLock()
	e, ok := f.embedders[key]
	f.mu.RUnlock()
	if ok {
		return e, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok = f.embedders[key]; ok {
		return e, nil
	}

	embedder, err := embopenai.NewEmbedder(ctx, &embopenai.EmbeddingConfig{
		APIKey:  cfg.EmbeddingAPIKey,
		BaseURL: cfg.EmbeddingAPIURL,
		Model:   cfg.EmbeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder for %s: %w", cfg.EmbeddingModel, err)
	}

	f.embedders[key] = embedder
	return embedder, nil
}
