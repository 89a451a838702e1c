package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/repository"
)

var _ repository.ChapterRepository = (*ChapterRepository)(nil)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create")
	defer span.End()

	rec := newChapterRecord(chapter)
	if err := getDB(ctx, r.client.db).Create(rec).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	chapter.ID = rec.ID
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByID")
	defer span.End()

	var rec chapterRecord
	if err := getDB(ctx, r.client.db).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return rec.toEntity(), nil
}

// ListByBook 获取书籍下的章节，最新的在前
func (r *ChapterRepository) ListByBook(ctx context.Context, bookID int64) ([]*entity.Chapter, error) {
	return r.list(ctx, "postgres.ChapterRepository.ListByBook", bookID, -1)
}

// GetRecent 获取最近 limit 个章节
func (r *ChapterRepository) GetRecent(ctx context.Context, bookID int64, limit int) ([]*entity.Chapter, error) {
	if limit < 0 {
		limit = 0
	}
	return r.list(ctx, "postgres.ChapterRepository.GetRecent", bookID, limit)
}

func (r *ChapterRepository) list(ctx context.Context, spanName string, bookID int64, limit int) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	query := getDB(ctx, r.client.db).
		Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC")
	if limit >= 0 {
		query = query.Limit(limit)
	}

	var recs []chapterRecord
	if err := query.Find(&recs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	chapters := make([]*entity.Chapter, 0, len(recs))
	for i := range recs {
		chapters = append(chapters, recs[i].toEntity())
	}
	return chapters, nil
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Update")
	defer span.End()

	if err := getDB(ctx, r.client.db).Save(newChapterRecord(chapter)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	return nil
}

// SaveEmbedding 以源文本为条件的单条 UPDATE，文本已被改写时不影响任何行
func (r *ChapterRepository) SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.SaveEmbedding")
	defer span.End()

	res := getDB(ctx, r.client.db).
		Model(&chapterRecord{}).
		Where("id = ? AND content = ?", id, text).
		Updates(embeddingColumns("content_vector", "content_vector_status", "content_digest", emb))
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, fmt.Errorf("failed to save chapter embedding: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Delete")
	defer span.End()

	if err := getDB(ctx, r.client.db).Delete(&chapterRecord{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return nil
}
