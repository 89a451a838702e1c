package entity

import "time"

// Chapter 章节，内容向量预留，不参与排序
type Chapter struct {
	ID               int64     `json:"id"`
	BookID           int64     `json:"book_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	ContentEmbedding Embedding `json:"content_embedding"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewChapter 创建新章节
func NewChapter(bookID int64, title, content string) *Chapter {
	now := time.Now()
	c := &Chapter{
		BookID:    bookID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.ContentEmbedding.Reset(content)
	return c
}

// WordCount 字数（按 rune 计）
func (c *Chapter) WordCount() int {
	return len([]rune(c.Content))
}
