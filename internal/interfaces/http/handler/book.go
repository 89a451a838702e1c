// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/application/library"
	"z-novel-writer/internal/interfaces/http/dto"
)

// BookHandler 书籍与世界观处理器
type BookHandler struct {
	library *library.Service
}

// NewBookHandler 创建书籍处理器
func NewBookHandler(lib *library.Service) *BookHandler {
	return &BookHandler{library: lib}
}

// ListBooks 获取书籍列表
// @Summary 获取书籍列表
// @Tags Books
// @Produce json
// @Success 200 {object} dto.Response[[]dto.BookResponse]
// @Router /v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.library.ListBooks(c.Request.Context())
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ToBookListResponse(books))
}

// CreateBook 创建书籍
// @Summary 创建书籍
// @Tags Books
// @Accept json
// @Produce json
// @Param body body dto.CreateBookRequest true "书籍信息"
// @Success 201 {object} dto.Response[dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	book, err := h.library.CreateBook(c.Request.Context(), req.Title)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Created(c, dto.ToBookResponse(book))
}

// GetBook 获取书籍
// @Summary 获取书籍
// @Tags Books
// @Produce json
// @Param bid path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	book, err := h.library.GetBook(c.Request.Context(), bookID)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ToBookResponse(book))
}

// DeleteBook 删除书籍及其角色、章节
// @Summary 删除书籍
// @Tags Books
// @Param bid path int true "书籍 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	if err := h.library.DeleteBook(c.Request.Context(), bookID); err != nil {
		dto.AppError(c, err)
		return
	}
	dto.NoContent(c)
}

// GetWorldview 获取世界观及向量化状态
// @Summary 获取世界观
// @Tags Worldview
// @Produce json
// @Param bid path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.WorldviewResponse]
// @Router /v1/books/{bid}/worldview [get]
func (h *BookHandler) GetWorldview(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	text, status, err := h.library.GetWorldview(c.Request.Context(), bookID)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, &dto.WorldviewResponse{BookID: bookID, Content: text, Vector: dto.ToVectorStatus(status)})
}

// SaveWorldview 保存世界观，向量在后台生成
// @Summary 保存世界观
// @Tags Worldview
// @Accept json
// @Produce json
// @Param bid path int true "书籍 ID"
// @Param body body dto.SaveWorldviewRequest true "世界观"
// @Success 200 {object} dto.Response[dto.WorldviewResponse]
// @Router /v1/books/{bid}/worldview [put]
func (h *BookHandler) SaveWorldview(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	var req dto.SaveWorldviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	book, err := h.library.SaveWorldview(c.Request.Context(), bookID, req.Content)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, &dto.WorldviewResponse{
		BookID:  book.ID,
		Content: book.Worldview,
		Vector:  dto.ToVectorStatus(book.WorldviewEmbedding.Status),
	})
}

// DeleteWorldview 删除世界观
// @Summary 删除世界观
// @Tags Worldview
// @Param bid path int true "书籍 ID"
// @Success 204
// @Router /v1/books/{bid}/worldview [delete]
func (h *BookHandler) DeleteWorldview(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	if err := h.library.DeleteWorldview(c.Request.Context(), bookID); err != nil {
		dto.AppError(c, err)
		return
	}
	dto.NoContent(c)
}
