package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/application/library"
	"z-novel-writer/internal/interfaces/http/dto"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	library *library.Service
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(lib *library.Service) *ChapterHandler {
	return &ChapterHandler{library: lib}
}

// ListChapters 获取章节列表，最新的在前
// @Summary 获取章节列表
// @Tags Chapters
// @Produce json
// @Param bid path int true "书籍 ID"
// @Success 200 {object} dto.Response[[]dto.ChapterResponse]
// @Router /v1/books/{bid}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	chapters, err := h.library.ListChapters(c.Request.Context(), bookID)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// CreateChapter 新建章节
// @Summary 新建章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param bid path int true "书籍 ID"
// @Param body body dto.CreateChapterRequest true "章节"
// @Success 201 {object} dto.Response[dto.ChapterResponse]
// @Router /v1/books/{bid}/chapters [post]
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chapter, err := h.library.SaveChapter(c.Request.Context(), bookID, req.Title, req.Content)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Created(c, dto.ToChapterResponse(chapter))
}

// DeleteChapter 删除章节
// @Summary 删除章节
// @Tags Chapters
// @Param chid path int true "章节 ID"
// @Success 204
// @Router /v1/chapters/{chid} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	id, ok := dto.ParseID(c, "chid")
	if !ok {
		return
	}
	if err := h.library.DeleteChapter(c.Request.Context(), id); err != nil {
		dto.AppError(c, err)
		return
	}
	dto.NoContent(c)
}
