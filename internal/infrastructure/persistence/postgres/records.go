package postgres

import (
	"time"

	"github.com/pgvector/pgvector-go"

	"z-novel-writer/internal/domain/entity"
)

// 向量维度由嵌入模型决定，列不固定维度
type bookRecord struct {
	ID                    int64            `gorm:"primaryKey;autoIncrement"`
	Title                 string           `gorm:"type:text;not null"`
	Worldview             string           `gorm:"type:text"`
	WorldviewVector       *pgvector.Vector `gorm:"type:vector"`
	WorldviewVectorStatus string           `gorm:"type:varchar(16)"`
	WorldviewDigest       string           `gorm:"type:varchar(64)"`
	CreatedAt             time.Time        `gorm:"index"`
	UpdatedAt             time.Time
}

func (bookRecord) TableName() string { return "books" }

type characterRecord struct {
	ID                      int64            `gorm:"primaryKey;autoIncrement"`
	BookID                  int64            `gorm:"index;not null"`
	Name                    string           `gorm:"type:varchar(255);not null"`
	Description             string           `gorm:"type:text"`
	DescriptionVector       *pgvector.Vector `gorm:"type:vector"`
	DescriptionVectorStatus string           `gorm:"type:varchar(16)"`
	DescriptionDigest       string           `gorm:"type:varchar(64)"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (characterRecord) TableName() string { return "characters" }

type chapterRecord struct {
	ID                  int64            `gorm:"primaryKey;autoIncrement"`
	BookID              int64            `gorm:"index:idx_chapters_book_created,priority:1;not null"`
	Title               string           `gorm:"type:varchar(255);not null"`
	Content             string           `gorm:"type:text"`
	ContentVector       *pgvector.Vector `gorm:"type:vector"`
	ContentVectorStatus string           `gorm:"type:varchar(16)"`
	ContentDigest       string           `gorm:"type:varchar(64)"`
	CreatedAt           time.Time        `gorm:"index:idx_chapters_book_created,priority:2"`
	UpdatedAt           time.Time
}

func (chapterRecord) TableName() string { return "chapters" }

func toVector(e entity.Embedding) *pgvector.Vector {
	if !e.HasVector() {
		return nil
	}
	v := pgvector.NewVector(e.Vector)
	return &v
}

func toEmbedding(v *pgvector.Vector, status, digest string) entity.Embedding {
	e := entity.Embedding{Status: entity.VectorStatus(status), Digest: digest}
	if v != nil {
		e.Vector = v.Slice()
	}
	return e
}

// embeddingColumns 只包含向量相关列的更新集合
func embeddingColumns(vectorCol, statusCol, digestCol string, e entity.Embedding) map[string]any {
	var vec any
	if e.HasVector() {
		vec = pgvector.NewVector(e.Vector)
	}
	return map[string]any{
		vectorCol: vec,
		statusCol: string(e.Status),
		digestCol: e.Digest,
	}
}

func newBookRecord(b *entity.Book) *bookRecord {
	return &bookRecord{
		ID:                    b.ID,
		Title:                 b.Title,
		Worldview:             b.Worldview,
		WorldviewVector:       toVector(b.WorldviewEmbedding),
		WorldviewVectorStatus: string(b.WorldviewEmbedding.Status),
		WorldviewDigest:       b.WorldviewEmbedding.Digest,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

func (r *bookRecord) toEntity() *entity.Book {
	return &entity.Book{
		ID:                 r.ID,
		Title:              r.Title,
		Worldview:          r.Worldview,
		WorldviewEmbedding: toEmbedding(r.WorldviewVector, r.WorldviewVectorStatus, r.WorldviewDigest),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func newCharacterRecord(c *entity.Character) *characterRecord {
	return &characterRecord{
		ID:                      c.ID,
		BookID:                  c.BookID,
		Name:                    c.Name,
		Description:             c.Description,
		DescriptionVector:       toVector(c.DescriptionEmbedding),
		DescriptionVectorStatus: string(c.DescriptionEmbedding.Status),
		DescriptionDigest:       c.DescriptionEmbedding.Digest,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

func (r *characterRecord) toEntity() *entity.Character {
	return &entity.Character{
		ID:                   r.ID,
		BookID:               r.BookID,
		Name:                 r.Name,
		Description:          r.Description,
		DescriptionEmbedding: toEmbedding(r.DescriptionVector, r.DescriptionVectorStatus, r.DescriptionDigest),
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func newChapterRecord(c *entity.Chapter) *chapterRecord {
	return &chapterRecord{
		ID:                  c.ID,
		BookID:              c.BookID,
		Title:               c.Title,
		Content:             c.Content,
		ContentVector:       toVector(c.ContentEmbedding),
		ContentVectorStatus: string(c.ContentEmbedding.Status),
		ContentDigest:       c.ContentEmbedding.Digest,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func (r *chapterRecord) toEntity() *entity.Chapter {
	return &entity.Chapter{
		ID:               r.ID,
		BookID:           r.BookID,
		Title:            r.Title,
		Content:          r.Content,
		ContentEmbedding: toEmbedding(r.ContentVector, r.ContentVectorStatus, r.ContentDigest),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
