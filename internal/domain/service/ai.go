// Package service 定义跨层稳定契约（port），由基础设施层实现
package service

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// AI 配置默认值
const (
	DefaultAPIURL         = "https://api.openai.com/v1"
	DefaultModel          = "gpt-3.5-turbo"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// AIConfig OpenAI 兼容接口的调用配置，作为显式参数传入每次调用
type AIConfig struct {
	APIKey          string `json:"api_key"`
	APIURL          string `json:"api_url"`
	Model           string `json:"model"`
	EmbeddingAPIKey string `json:"embedding_api_key,omitempty"`
	EmbeddingAPIURL string `json:"embedding_api_url,omitempty"`
	EmbeddingModel  string `json:"embedding_model,omitempty"`
}

// Normalize 填充默认值。向量接口未单独配置地址时沿用对话接口的 key 与地址；
// 单独配置了其他地址时 key 只取自身，不借用对话接口的 key。
func (c AIConfig) Normalize() AIConfig {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.APIURL = trimURL(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	c.EmbeddingAPIKey = strings.TrimSpace(c.EmbeddingAPIKey)
	c.EmbeddingAPIURL = trimURL(c.EmbeddingAPIURL)
	if c.EmbeddingAPIURL == "" {
		c.EmbeddingAPIURL = c.APIURL
	}
	if c.EmbeddingAPIKey == "" && c.EmbeddingAPIURL == c.APIURL {
		c.EmbeddingAPIKey = c.APIKey
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	return c
}

// Merge 用 override 中的非空字段覆盖 c。
// key 与地址成对覆盖：override 指定了地址时，key 一并取自 override（可以为空），
// c 原有的 key 不会发往 override 指定的地址。
func (c AIConfig) Merge(override AIConfig) AIConfig {
	if trimURL(override.APIURL) != "" {
		c.APIURL = override.APIURL
		c.APIKey = override.APIKey
		if trimURL(c.EmbeddingAPIURL) == "" {
			// 向量接口沿用对话地址，原有的向量 key 同样不能跟过去
			c.EmbeddingAPIKey = ""
		}
	} else if strings.TrimSpace(override.APIKey) != "" {
		c.APIKey = override.APIKey
	}
	if strings.TrimSpace(override.Model) != "" {
		c.Model = override.Model
	}

	if trimURL(override.EmbeddingAPIURL) != "" {
		c.EmbeddingAPIURL = override.EmbeddingAPIURL
		c.EmbeddingAPIKey = override.EmbeddingAPIKey
	} else if strings.TrimSpace(override.EmbeddingAPIKey) != "" {
		c.EmbeddingAPIKey = override.EmbeddingAPIKey
	}
	if strings.TrimSpace(override.EmbeddingModel) != "" {
		c.EmbeddingModel = override.EmbeddingModel
	}
	return c
}

func trimURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

// VectorResponse 向量化结果
type VectorResponse struct {
	Vector []float32
	Model  string
}

// EmbeddingClient 文本向量化
type EmbeddingClient interface {
	Embed(ctx context.Context, text string, cfg AIConfig) (*VectorResponse, error)
}

// KeywordExtractor 从用户输入中提取检索关键词
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, text string, cfg AIConfig) ([]string, error)
}

// CompletionClient 流式文本生成
type CompletionClient interface {
	Stream(ctx context.Context, messages []*schema.Message, cfg AIConfig) (*schema.StreamReader[*schema.Message], error)
}
