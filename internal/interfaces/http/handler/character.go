package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-writer/internal/application/library"
	"z-novel-writer/internal/interfaces/http/dto"
)

// CharacterHandler 角色处理器
type CharacterHandler struct {
	library *library.Service
}

// NewCharacterHandler 创建角色处理器
func NewCharacterHandler(lib *library.Service) *CharacterHandler {
	return &CharacterHandler{library: lib}
}

// ListCharacters 获取书籍下的角色
// @Summary 获取角色列表
// @Tags Characters
// @Produce json
// @Param bid path int true "书籍 ID"
// @Success 200 {object} dto.Response[[]dto.CharacterResponse]
// @Router /v1/books/{bid}/characters [get]
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	characters, err := h.library.ListCharacters(c.Request.Context(), bookID)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ToCharacterListResponse(characters))
}

// CreateCharacter 新建角色
// @Summary 新建角色
// @Tags Characters
// @Accept json
// @Produce json
// @Param bid path int true "书籍 ID"
// @Param body body dto.CreateCharacterRequest true "角色信息"
// @Success 201 {object} dto.Response[dto.CharacterResponse]
// @Router /v1/books/{bid}/characters [post]
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	bookID, ok := dto.ParseID(c, "bid")
	if !ok {
		return
	}
	var req dto.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	character, err := h.library.SaveCharacter(c.Request.Context(), bookID, req.Name, req.Description)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Created(c, dto.ToCharacterResponse(character))
}

// UpdateCharacter 修改角色描述
// @Summary 修改角色描述
// @Tags Characters
// @Accept json
// @Produce json
// @Param cid path int true "角色 ID"
// @Param body body dto.UpdateCharacterRequest true "角色描述"
// @Success 200 {object} dto.Response[dto.CharacterResponse]
// @Router /v1/characters/{cid} [put]
func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	id, ok := dto.ParseID(c, "cid")
	if !ok {
		return
	}
	var req dto.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	character, err := h.library.UpdateCharacter(c.Request.Context(), id, req.Description)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ToCharacterResponse(character))
}

// DeleteCharacter 删除角色
// @Summary 删除角色
// @Tags Characters
// @Param cid path int true "角色 ID"
// @Success 204
// @Router /v1/characters/{cid} [delete]
func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	id, ok := dto.ParseID(c, "cid")
	if !ok {
		return
	}
	if err := h.library.DeleteCharacter(c.Request.Context(), id); err != nil {
		dto.AppError(c, err)
		return
	}
	dto.NoContent(c)
}
