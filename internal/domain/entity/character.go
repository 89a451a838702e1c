package entity

import "time"

// Character 角色
type Character struct {
	ID                   int64     `json:"id"`
	BookID               int64     `json:"book_id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	DescriptionEmbedding Embedding `json:"description_embedding"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewCharacter 创建新角色，描述向量待生成
func NewCharacter(bookID int64, name, description string) *Character {
	now := time.Now()
	c := &Character{
		BookID:      bookID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.DescriptionEmbedding.Reset(description)
	return c
}

// SetDescription 更新描述并重置向量
func (c *Character) SetDescription(description string) {
	c.Description = description
	c.DescriptionEmbedding.Reset(description)
	c.UpdatedAt = time.Now()
}
