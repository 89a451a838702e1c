package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/interfaces/http/dto"
)

// Prober AI 接口连通性探测
type Prober interface {
	Ping(ctx context.Context, cfg service.AIConfig) error
	PingEmbedding(ctx context.Context, cfg service.AIConfig) (int, error)
}

// AIHandler AI 配置测试处理器
type AIHandler struct {
	prober     Prober
	aiDefaults service.AIConfig
}

// NewAIHandler 创建 AI 测试处理器
func NewAIHandler(prober Prober, aiDefaults service.AIConfig) *AIHandler {
	return &AIHandler{prober: prober, aiDefaults: aiDefaults}
}

func (h *AIHandler) bindConfig(c *gin.Context) (service.AIConfig, bool) {
	var req dto.AITestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, err.Error())
			return service.AIConfig{}, false
		}
	}
	return h.aiDefaults.Merge(req.AIConfig.ToAIConfig()).Normalize(), true
}

// TestChat 测试对话接口
// @Summary 测试对话模型配置
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.AITestRequest false "请求级 AI 配置"
// @Success 200 {object} dto.Response[dto.AITestResponse]
// @Router /v1/ai/test [post]
func (h *AIHandler) TestChat(c *gin.Context) {
	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}
	resp := &dto.AITestResponse{OK: true, Model: cfg.Model}
	if err := h.prober.Ping(c.Request.Context(), cfg); err != nil {
		resp.OK = false
		resp.Message = err.Error()
	}
	dto.Success(c, resp)
}

// TestEmbedding 测试向量接口
// @Summary 测试向量模型配置
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.AITestRequest false "请求级 AI 配置"
// @Success 200 {object} dto.Response[dto.AITestResponse]
// @Router /v1/ai/test-embedding [post]
func (h *AIHandler) TestEmbedding(c *gin.Context) {
	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}
	resp := &dto.AITestResponse{OK: true, Model: cfg.EmbeddingModel}
	dims, err := h.prober.PingEmbedding(c.Request.Context(), cfg)
	if err != nil {
		resp.OK = false
		resp.Message = err.Error()
	}
	resp.Dims = dims
	dto.Success(c, resp)
}
