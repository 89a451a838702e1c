package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/repository"
)

var _ repository.CharacterRepository = (*CharacterRepository)(nil)

// CharacterRepository 角色仓储实现
type CharacterRepository struct {
	client *Client
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(client *Client) *CharacterRepository {
	return &CharacterRepository{client: client}
}

// Create 创建角色
func (r *CharacterRepository) Create(ctx context.Context, character *entity.Character) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.Create")
	defer span.End()

	rec := newCharacterRecord(character)
	if err := getDB(ctx, r.client.db).Create(rec).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create character: %w", err)
	}
	character.ID = rec.ID
	return nil
}

// GetByID 根据 ID 获取角色
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.GetByID")
	defer span.End()

	var rec characterRecord
	if err := getDB(ctx, r.client.db).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return rec.toEntity(), nil
}

// ListByBook 获取书籍下的角色，按创建顺序
func (r *CharacterRepository) ListByBook(ctx context.Context, bookID int64) ([]*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.ListByBook")
	defer span.End()

	var recs []characterRecord
	if err := getDB(ctx, r.client.db).
		Where("book_id = ?", bookID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	characters := make([]*entity.Character, 0, len(recs))
	for i := range recs {
		characters = append(characters, recs[i].toEntity())
	}
	return characters, nil
}

// Update 更新角色
func (r *CharacterRepository) Update(ctx context.Context, character *entity.Character) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.Update")
	defer span.End()

	if err := getDB(ctx, r.client.db).Save(newCharacterRecord(character)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update character: %w", err)
	}
	return nil
}

// SaveEmbedding 以源文本为条件的单条 UPDATE，文本已被改写时不影响任何行
func (r *CharacterRepository) SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.SaveEmbedding")
	defer span.End()

	res := getDB(ctx, r.client.db).
		Model(&characterRecord{}).
		Where("id = ? AND description = ?", id, text).
		Updates(embeddingColumns("description_vector", "description_vector_status", "description_digest", emb))
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, fmt.Errorf("failed to save character embedding: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除角色
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.Delete")
	defer span.End()

	if err := getDB(ctx, r.client.db).Delete(&characterRecord{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete character: %w", err)
	}
	return nil
}
