package entity

import "time"

// Book 书籍（项目），世界观直接挂在书籍上
type Book struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Worldview          string    `json:"worldview,omitempty"`
	WorldviewEmbedding Embedding `json:"worldview_embedding"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewBook 创建新书籍
func NewBook(title string) *Book {
	now := time.Now()
	return &Book{
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetWorldview 设置世界观并重置向量
func (b *Book) SetWorldview(text string) {
	b.Worldview = text
	b.WorldviewEmbedding.Reset(text)
	b.UpdatedAt = time.Now()
}

// ClearWorldview 删除世界观及其向量
func (b *Book) ClearWorldview() {
	b.Worldview = ""
	b.WorldviewEmbedding = Embedding{}
	b.UpdatedAt = time.Now()
}
