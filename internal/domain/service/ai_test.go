package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIConfigNormalizeFallsBack(t *testing.T) {
	cfg := AIConfig{APIKey: " sk-main ", APIURL: "https://proxy.example.com/v1/"}.Normalize()

	assert.Equal(t, "sk-main", cfg.APIKey)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.APIURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "sk-main", cfg.EmbeddingAPIKey)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.EmbeddingAPIURL)
	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
}

func TestAIConfigNormalizeKeepsEmbeddingOverrides(t *testing.T) {
	cfg := AIConfig{
		APIKey:          "sk-main",
		EmbeddingAPIKey: "sk-embed",
		EmbeddingAPIURL: "https://embed.example.com/v1",
		EmbeddingModel:  "bge-m3",
	}.Normalize()

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "sk-embed", cfg.EmbeddingAPIKey)
	assert.Equal(t, "https://embed.example.com/v1", cfg.EmbeddingAPIURL)
	assert.Equal(t, "bge-m3", cfg.EmbeddingModel)
}

func TestAIConfigMerge(t *testing.T) {
	base := AIConfig{APIKey: "sk-base", Model: "gpt-4o-mini"}
	merged := base.Merge(AIConfig{APIKey: "sk-request"})

	assert.Equal(t, "sk-request", merged.APIKey)
	assert.Equal(t, "gpt-4o-mini", merged.Model)
}

func TestAIConfigMergeURLRequiresOwnKey(t *testing.T) {
	base := AIConfig{APIKey: "sk-server", EmbeddingAPIKey: "sk-server-embed"}

	cfg := base.Merge(AIConfig{APIURL: "http://attacker.example"}).Normalize()
	assert.Equal(t, "http://attacker.example", cfg.APIURL)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, "http://attacker.example", cfg.EmbeddingAPIURL)
	assert.Empty(t, cfg.EmbeddingAPIKey)

	cfg = base.Merge(AIConfig{EmbeddingAPIURL: "http://attacker.example"}).Normalize()
	assert.Equal(t, "sk-server", cfg.APIKey)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "http://attacker.example", cfg.EmbeddingAPIURL)
	assert.Empty(t, cfg.EmbeddingAPIKey)

	cfg = base.Merge(AIConfig{APIURL: "https://proxy.example.com/v1", APIKey: "sk-request"}).Normalize()
	assert.Equal(t, "sk-request", cfg.APIKey)
	assert.Equal(t, "sk-request", cfg.EmbeddingAPIKey)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.EmbeddingAPIURL)
}

func TestAIConfigMergeKeepsServerEmbeddingEndpoint(t *testing.T) {
	base := AIConfig{
		APIKey:          "sk-server",
		EmbeddingAPIKey: "sk-embed",
		EmbeddingAPIURL: "https://embed.example.com/v1",
	}

	cfg := base.Merge(AIConfig{APIURL: "https://proxy.example.com/v1", APIKey: "sk-request"}).Normalize()

	assert.Equal(t, "sk-embed", cfg.EmbeddingAPIKey)
	assert.Equal(t, "https://embed.example.com/v1", cfg.EmbeddingAPIURL)
}

func TestAIConfigNormalizeSeparateEmbeddingURLKeepsOwnKey(t *testing.T) {
	cfg := AIConfig{APIKey: "sk-main", EmbeddingAPIURL: "https://embed.example.com/v1/"}.Normalize()

	assert.Equal(t, "https://embed.example.com/v1", cfg.EmbeddingAPIURL)
	assert.Empty(t, cfg.EmbeddingAPIKey)
}
