package retrieval

import (
	"context"

	"z-novel-writer/internal/domain/entity"
)

// BookReader 检索对书籍存储的最小依赖（port）
type BookReader interface {
	GetByID(ctx context.Context, id int64) (*entity.Book, error)
}

// CharacterLister 检索对角色存储的最小依赖（port）
type CharacterLister interface {
	ListByBook(ctx context.Context, bookID int64) ([]*entity.Character, error)
}
