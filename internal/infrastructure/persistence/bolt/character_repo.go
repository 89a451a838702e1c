package bolt

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"z-novel-writer/internal/domain/entity"
)

// CharacterRepository 角色仓储实现
type CharacterRepository struct {
	client *Client
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(client *Client) *CharacterRepository {
	return &CharacterRepository{client: client}
}

// Create 创建角色，所属书籍必须存在
func (r *CharacterRepository) Create(ctx context.Context, character *entity.Character) error {
	_, span := tracer.Start(ctx, "bolt.CharacterRepository.Create")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketBooks).Get(itob(character.BookID)) == nil {
			return fmt.Errorf("book %d not found", character.BookID)
		}
		b := tx.Bucket(bucketCharacters)
		id, err := nextID(b)
		if err != nil {
			return err
		}
		character.ID = id
		return put(b, id, character)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取角色
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*entity.Character, error) {
	_, span := tracer.Start(ctx, "bolt.CharacterRepository.GetByID")
	defer span.End()

	var character entity.Character
	var found bool
	err := r.client.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = get(tx.Bucket(bucketCharacters), id, &character)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &character, nil
}

// ListByBook 获取书籍下的角色，按 ID（创建顺序）排列
func (r *CharacterRepository) ListByBook(ctx context.Context, bookID int64) ([]*entity.Character, error) {
	_, span := tracer.Start(ctx, "bolt.CharacterRepository.ListByBook")
	defer span.End()

	characters := make([]*entity.Character, 0)
	err := r.client.db.View(func(tx *bbolt.Tx) error {
		return scan(tx.Bucket(bucketCharacters), func(c *entity.Character) {
			if c.BookID == bookID {
				characters = append(characters, c)
			}
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// Update 更新角色
func (r *CharacterRepository) Update(ctx context.Context, character *entity.Character) error {
	_, span := tracer.Start(ctx, "bolt.CharacterRepository.Update")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCharacters)
		if b.Get(itob(character.ID)) == nil {
			return fmt.Errorf("character %d not found", character.ID)
		}
		return put(b, character.ID, character)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update character: %w", err)
	}
	return nil
}

// SaveEmbedding 源文本未变时只写入向量字段
func (r *CharacterRepository) SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error) {
	_, span := tracer.Start(ctx, "bolt.CharacterRepository.SaveEmbedding")
	defer span.End()

	saved, err := saveEmbedding(r.client.db, bucketCharacters, id, text, emb, func(c *entity.Character) (string, *entity.Embedding) {
		return c.Description, &c.DescriptionEmbedding
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to save character embedding: %w", err)
	}
	return saved, nil
}

// Delete 删除角色
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	_, span := tracer.Start(ctx, "bolt.CharacterRepository.Delete")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCharacters).Delete(itob(id))
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete character: %w", err)
	}
	return nil
}
