// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-novel-writer/internal/domain/entity"
)

// BookRepository 书籍仓储接口
type BookRepository interface {
	// Create 创建书籍并回填 ID
	Create(ctx context.Context, book *entity.Book) error

	// GetByID 根据 ID 获取书籍，不存在时返回 nil, nil
	GetByID(ctx context.Context, id int64) (*entity.Book, error)

	// List 获取全部书籍（按创建时间倒序）
	List(ctx context.Context) ([]*entity.Book, error)

	// Update 更新书籍
	Update(ctx context.Context, book *entity.Book) error

	// SaveEmbedding 仅当世界观仍等于 text 时写入向量字段，其余字段不动；
	// 返回是否写入（记录不存在或文本已变化时为 false）
	SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error)

	// Delete 删除书籍，并在同一事务内级联删除角色与章节
	Delete(ctx context.Context, id int64) error
}
