package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/repository"
)

var _ repository.BookRepository = (*BookRepository)(nil)

// BookRepository 书籍仓储实现
type BookRepository struct {
	client *Client
}

// NewBookRepository 创建书籍仓储
func NewBookRepository(client *Client) *BookRepository {
	return &BookRepository{client: client}
}

// Create 创建书籍
func (r *BookRepository) Create(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Create")
	defer span.End()

	rec := newBookRecord(book)
	if err := getDB(ctx, r.client.db).Create(rec).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create book: %w", err)
	}
	book.ID = rec.ID
	return nil
}

// GetByID 根据 ID 获取书籍
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.GetByID")
	defer span.End()

	var rec bookRecord
	if err := getDB(ctx, r.client.db).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return rec.toEntity(), nil
}

// List 获取全部书籍，最新创建的在前
func (r *BookRepository) List(ctx context.Context) ([]*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.List")
	defer span.End()

	var recs []bookRecord
	if err := getDB(ctx, r.client.db).Order("created_at DESC, id DESC").Find(&recs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]*entity.Book, 0, len(recs))
	for i := range recs {
		books = append(books, recs[i].toEntity())
	}
	return books, nil
}

// Update 更新书籍
func (r *BookRepository) Update(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Update")
	defer span.End()

	if err := getDB(ctx, r.client.db).Save(newBookRecord(book)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// SaveEmbedding 以源文本为条件的单条 UPDATE，文本已被改写时不影响任何行
func (r *BookRepository) SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.SaveEmbedding")
	defer span.End()

	res := getDB(ctx, r.client.db).
		Model(&bookRecord{}).
		Where("id = ? AND worldview = ?", id, text).
		Updates(embeddingColumns("worldview_vector", "worldview_vector_status", "worldview_digest", emb))
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, fmt.Errorf("failed to save book embedding: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除书籍，同一事务内级联删除角色与章节
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Delete")
	defer span.End()

	err := withTransaction(ctx, r.client.db, func(ctx context.Context) error {
		db := getDB(ctx, r.client.db)
		if err := db.Where("book_id = ?", id).Delete(&characterRecord{}).Error; err != nil {
			return err
		}
		if err := db.Where("book_id = ?", id).Delete(&chapterRecord{}).Error; err != nil {
			return err
		}
		return db.Delete(&bookRecord{}, "id = ?", id).Error
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}
