// Package llm 提供 OpenAI 兼容接口的对话、关键词提取与向量化客户端
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/workflow/prompt"
	apperrors "z-novel-writer/pkg/errors"
)

// Options 生成参数，零值表示不下发该参数
type Options struct {
	Temperature        float64
	MaxTokens          int
	KeywordTemperature float64
	KeywordMaxTokens   int
}

// Client 实现 service.CompletionClient / KeywordExtractor / EmbeddingClient
type Client struct {
	factory *EinoFactory
	prompts *prompt.Registry
	opts    Options
}

var (
	_ service.CompletionClient = (*Client)(nil)
	_ service.KeywordExtractor = (*Client)(nil)
	_ service.EmbeddingClient  = (*Client)(nil)
)

func NewClient(factory *EinoFactory, prompts *prompt.Registry, opts Options) *Client {
	if opts.KeywordTemperature <= 0 {
		opts.KeywordTemperature = 0.2
	}
	if opts.KeywordMaxTokens <= 0 {
		opts.KeywordMaxTokens = 1000
	}
	return &Client{factory: factory, prompts: prompts, opts: opts}
}

func (c *Client) chatModel(ctx context.Context, cfg service.AIConfig) (model.BaseChatModel, service.AIConfig, error) {
	cfg = cfg.Normalize()
	if cfg.APIKey == "" {
		return nil, cfg, apperrors.ErrAIConfigMissing
	}
	m, err := c.factory.ChatModel(ctx, cfg)
	if err != nil {
		return nil, cfg, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "failed to init chat model")
	}
	return m, cfg, nil
}

// Stream 流式生成，调用方负责 Close()
func (c *Client) Stream(ctx context.Context, messages []*schema.Message, cfg service.AIConfig) (*schema.StreamReader[*schema.Message], error) {
	chat, cfg, err := c.chatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx = service.WithModel(service.WithWorkflow(ctx, "writing"), cfg.Model)

	opts := make([]model.Option, 0, 2)
	if c.opts.Temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(c.opts.Temperature)))
	}
	if c.opts.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(c.opts.MaxTokens))
	}

	sr, err := chat.Stream(ctx, messages, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "completion stream failed")
	}
	return sr, nil
}

// ExtractKeywords 单次对话调用提取关键词
func (c *Client) ExtractKeywords(ctx context.Context, text string, cfg service.AIConfig) ([]string, error) {
	chat, cfg, err := c.chatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx = service.WithModel(service.WithWorkflow(ctx, "keywords"), cfg.Model)

	msgs, err := c.prompts.Format(ctx, prompt.PromptKeywordsV1, map[string]any{"text": text})
	if err != nil {
		return nil, err
	}

	out, err := chat.Generate(ctx, msgs,
		model.WithTemperature(float32(c.opts.KeywordTemperature)),
		model.WithMaxTokens(c.opts.KeywordMaxTokens),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeKeywordExtractFailed, "keyword extraction failed")
	}
	if out == nil {
		return []string{}, nil
	}
	return ParseKeywords(out.Content), nil
}

// Embed 向量化单段文本
func (c *Client) Embed(ctx context.Context, text string, cfg service.AIConfig) (*service.VectorResponse, error) {
	cfg = cfg.Normalize()
	if cfg.EmbeddingAPIKey == "" {
		return nil, apperrors.ErrAIConfigMissing
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("text to embed is empty")
	}

	ctx = service.WithModel(service.WithWorkflow(ctx, "embedding"), cfg.EmbeddingModel)

	embedder, err := c.factory.Embedder(ctx, cfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "failed to init embedder")
	}

	vectors, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "embedding call failed")
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, apperrors.Wrap(fmt.Errorf("empty embedding"), apperrors.CodeEmbeddingFailed, "embedding call failed")
	}

	vec := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vec[i] = float32(v)
	}
	return &service.VectorResponse{Vector: vec, Model: cfg.EmbeddingModel}, nil
}

// Ping 发送 1 token 的对话请求检查配置
func (c *Client) Ping(ctx context.Context, cfg service.AIConfig) error {
	chat, cfg, err := c.chatModel(ctx, cfg)
	if err != nil {
		return err
	}
	ctx = service.WithModel(service.WithWorkflow(ctx, "probe"), cfg.Model)

	if _, err := chat.Generate(ctx, []*schema.Message{schema.UserMessage("test")}, model.WithMaxTokens(1)); err != nil {
		return apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "chat probe failed")
	}
	return nil
}

// PingEmbedding 向量化 "test" 检查向量接口配置，返回向量维度
func (c *Client) PingEmbedding(ctx context.Context, cfg service.AIConfig) (int, error) {
	resp, err := c.Embed(ctx, "test", cfg)
	if err != nil {
		return 0, err
	}
	return len(resp.Vector), nil
}
