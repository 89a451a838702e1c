package repository

import (
	"context"

	"z-novel-writer/internal/domain/entity"
)

// CharacterRepository 角色仓储接口
type CharacterRepository interface {
	// Create 创建角色并回填 ID
	Create(ctx context.Context, character *entity.Character) error

	// GetByID 根据 ID 获取角色，不存在时返回 nil, nil
	GetByID(ctx context.Context, id int64) (*entity.Character, error)

	// ListByBook 获取书籍下的角色（按创建顺序）
	ListByBook(ctx context.Context, bookID int64) ([]*entity.Character, error)

	// Update 更新角色
	Update(ctx context.Context, character *entity.Character) error

	// SaveEmbedding 仅当角色描述仍等于 text 时写入向量字段，其余字段不动；
	// 返回是否写入（记录不存在或文本已变化时为 false）
	SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error)

	// Delete 删除角色
	Delete(ctx context.Context, id int64) error
}
