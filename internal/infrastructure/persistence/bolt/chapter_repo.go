package bolt

import (
	"context"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"z-novel-writer/internal/domain/entity"
)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// Create 创建章节，所属书籍必须存在
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	_, span := tracer.Start(ctx, "bolt.ChapterRepository.Create")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketBooks).Get(itob(chapter.BookID)) == nil {
			return fmt.Errorf("book %d not found", chapter.BookID)
		}
		b := tx.Bucket(bucketChapters)
		id, err := nextID(b)
		if err != nil {
			return err
		}
		chapter.ID = id
		return put(b, id, chapter)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (*entity.Chapter, error) {
	_, span := tracer.Start(ctx, "bolt.ChapterRepository.GetByID")
	defer span.End()

	var chapter entity.Chapter
	var found bool
	err := r.client.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = get(tx.Bucket(bucketChapters), id, &chapter)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &chapter, nil
}

// ListByBook 获取书籍下的章节，最新的在前
func (r *ChapterRepository) ListByBook(ctx context.Context, bookID int64) ([]*entity.Chapter, error) {
	_, span := tracer.Start(ctx, "bolt.ChapterRepository.ListByBook")
	defer span.End()

	chapters := make([]*entity.Chapter, 0)
	err := r.client.db.View(func(tx *bbolt.Tx) error {
		return scan(tx.Bucket(bucketChapters), func(c *entity.Chapter) {
			if c.BookID == bookID {
				chapters = append(chapters, c)
			}
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		if chapters[i].CreatedAt.Equal(chapters[j].CreatedAt) {
			return chapters[i].ID > chapters[j].ID
		}
		return chapters[i].CreatedAt.After(chapters[j].CreatedAt)
	})
	return chapters, nil
}

// GetRecent 获取最近 limit 个章节
func (r *ChapterRepository) GetRecent(ctx context.Context, bookID int64, limit int) ([]*entity.Chapter, error) {
	chapters, err := r.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(chapters) > limit {
		chapters = chapters[:limit]
	}
	return chapters, nil
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	_, span := tracer.Start(ctx, "bolt.ChapterRepository.Update")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChapters)
		if b.Get(itob(chapter.ID)) == nil {
			return fmt.Errorf("chapter %d not found", chapter.ID)
		}
		return put(b, chapter.ID, chapter)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	return nil
}

// SaveEmbedding 源文本未变时只写入向量字段
func (r *ChapterRepository) SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error) {
	_, span := tracer.Start(ctx, "bolt.ChapterRepository.SaveEmbedding")
	defer span.End()

	saved, err := saveEmbedding(r.client.db, bucketChapters, id, text, emb, func(c *entity.Chapter) (string, *entity.Embedding) {
		return c.Content, &c.ContentEmbedding
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to save chapter embedding: %w", err)
	}
	return saved, nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id int64) error {
	_, span := tracer.Start(ctx, "bolt.ChapterRepository.Delete")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChapters).Delete(itob(id))
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return nil
}
