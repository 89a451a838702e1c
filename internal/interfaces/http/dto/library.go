package dto

import (
	"time"

	"z-novel-writer/internal/domain/entity"
)

// CreateBookRequest 创建书籍请求
type CreateBookRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// BookResponse 书籍响应
type BookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	HasWorldview    bool   `json:"has_worldview"`
	WorldviewStatus string `json:"worldview_status,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// ToBookResponse 转换书籍响应
func ToBookResponse(b *entity.Book) *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		HasWorldview:    b.Worldview != "",
		WorldviewStatus: string(b.WorldviewEmbedding.Status),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

// ToBookListResponse 转换书籍列表
func ToBookListResponse(books []*entity.Book) []*BookResponse {
	out := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ToBookResponse(b))
	}
	return out
}

// SaveWorldviewRequest 保存世界观请求
type SaveWorldviewRequest struct {
	Content string `json:"content" binding:"max=100000"`
}

// VectorStatusResponse 向量化状态
type VectorStatusResponse struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

// ToVectorStatus 转换向量化状态
func ToVectorStatus(s entity.VectorStatus) VectorStatusResponse {
	return VectorStatusResponse{Status: string(s), Label: s.Label(), Color: s.Color()}
}

// WorldviewResponse 世界观响应
type WorldviewResponse struct {
	BookID  int64                `json:"book_id"`
	Content string               `json:"content"`
	Vector  VectorStatusResponse `json:"vector"`
}

// CreateCharacterRequest 创建角色请求
type CreateCharacterRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=20000"`
}

// UpdateCharacterRequest 更新角色描述请求
type UpdateCharacterRequest struct {
	Description string `json:"description" binding:"max=20000"`
}

// CharacterResponse 角色响应
type CharacterResponse struct {
	ID          int64                `json:"id"`
	BookID      int64                `json:"book_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Vector      VectorStatusResponse `json:"vector"`
	CreatedAt   string               `json:"created_at"`
}

// ToCharacterResponse 转换角色响应
func ToCharacterResponse(c *entity.Character) *CharacterResponse {
	return &CharacterResponse{
		ID:          c.ID,
		BookID:      c.BookID,
		Name:        c.Name,
		Description: c.Description,
		Vector:      ToVectorStatus(c.DescriptionEmbedding.Status),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// ToCharacterListResponse 转换角色列表
func ToCharacterListResponse(characters []*entity.Character) []*CharacterResponse {
	out := make([]*CharacterResponse, 0, len(characters))
	for _, c := range characters {
		out = append(out, ToCharacterResponse(c))
	}
	return out
}

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content"`
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID        int64                `json:"id"`
	BookID    int64                `json:"book_id"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	WordCount int                  `json:"word_count"`
	Vector    VectorStatusResponse `json:"vector"`
	CreatedAt string               `json:"created_at"`
}

// ToChapterResponse 转换章节响应
func ToChapterResponse(c *entity.Chapter) *ChapterResponse {
	return &ChapterResponse{
		ID:        c.ID,
		BookID:    c.BookID,
		Title:     c.Title,
		Content:   c.Content,
		WordCount: c.WordCount(),
		Vector:    ToVectorStatus(c.ContentEmbedding.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// ToChapterListResponse 转换章节列表
func ToChapterListResponse(chapters []*entity.Chapter) []*ChapterResponse {
	out := make([]*ChapterResponse, 0, len(chapters))
	for _, c := range chapters {
		out = append(out, ToChapterResponse(c))
	}
	return out
}
