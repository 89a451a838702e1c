package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/application/library"
	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/interfaces/http/dto"
)

// SearchHandler 检索调试处理器
type SearchHandler struct {
	library    *library.Service
	querier    *retrieval.Querier
	aiDefaults service.AIConfig
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(lib *library.Service, querier *retrieval.Querier, aiDefaults service.AIConfig) *SearchHandler {
	return &SearchHandler{
		library:    lib,
		querier:    querier,
		aiDefaults: aiDefaults,
	}
}

// Search 在书籍资料中检索
// @Summary 检索书籍资料
// @Description mode: hybrid（默认）、vector、literal、keyword；未提供关键词时由模型提取
// @Tags Search
// @Accept json
// @Produce json
// @Param bid path int true "书籍 ID"
// @Param body body dto.SearchRequest true "检索参数"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	// 引擎对缺失书籍只返回空结果，这里先显式返回 404
	if _, err := h.library.GetBook(ctx, bookID); err != nil {
		dto.AppError(c, err)
		return
	}

	out, err := h.querier.Query(ctx, retrieval.QueryRequest{
		BookID:   bookID,
		Text:     req.Query,
		Mode:     req.Mode,
		Keywords: req.Keywords,
		Options:  req.SearchOptions(),
		AIConfig: h.aiDefaults.Merge(req.AIConfig.ToAIConfig()),
	})
	if err != nil {
		dto.AppError(c, err)
		return
	}

	resp := dto.ToSearchResponse(out.Mode, out.Keywords, out.Result)
	if req.Debug {
		resp.Debug = dto.ToSearchDebug(out.Result.Debug, out.Dims)
	}
	dto.Success(c, resp)
}
