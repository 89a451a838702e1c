package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/application/writing"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/interfaces/http/dto"
	apperrors "z-novel-writer/pkg/errors"
)

// Generator 流式写作生成
type Generator interface {
	Generate(ctx context.Context, req writing.Request) <-chan writing.StreamChunk
}

// WritingHandler 写作生成处理器
type WritingHandler struct {
	generator  Generator
	aiDefaults service.AIConfig
}

// NewWritingHandler 创建写作处理器
func NewWritingHandler(generator Generator, aiDefaults service.AIConfig) *WritingHandler {
	return &WritingHandler{generator: generator, aiDefaults: aiDefaults}
}

// Generate 流式生成续写内容
// @Summary 流式写作生成
// @Description 通过 SSE 返回 content / error / done 事件
// @Tags Writing
// @Accept json
// @Produce text/event-stream
// @Param body body dto.GenerateRequest true "写作请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/writing/generate [post]
func (h *WritingHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chunks := h.generator.Generate(c.Request.Context(), writing.Request{
		BookID:   req.BookID,
		Input:    req.Input,
		AIConfig: h.aiDefaults.Merge(req.AIConfig.ToAIConfig()),
	})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return false
			}
			switch chunk.Type {
			case writing.ChunkContent:
				c.SSEvent("content", gin.H{"chunk": chunk.Content, "index": index})
				index++
				return true
			case writing.ChunkError:
				appErr := apperrors.AsAppError(chunk.Err)
				c.SSEvent("error", gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
					"detail":  appErr.Detail,
				})
				return false
			default:
				c.SSEvent("done", gin.H{"chunks": index})
				return false
			}
		case <-c.Request.Context().Done():
			return false
		}
	})
}
