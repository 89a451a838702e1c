package repository

import (
	"context"

	"z-novel-writer/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节并回填 ID
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节，不存在时返回 nil, nil
	GetByID(ctx context.Context, id int64) (*entity.Chapter, error)

	// ListByBook 获取书籍下的章节，最新的在前
	ListByBook(ctx context.Context, bookID int64) ([]*entity.Chapter, error)

	// GetRecent 获取最近 limit 个章节，最新的在前
	GetRecent(ctx context.Context, bookID int64, limit int) ([]*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// SaveEmbedding 仅当章节正文仍等于 text 时写入向量字段，其余字段不动；
	// 返回是否写入（记录不存在或文本已变化时为 false）
	SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error)

	// Delete 删除章节
	Delete(ctx context.Context, id int64) error
}
