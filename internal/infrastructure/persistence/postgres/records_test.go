package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/entity"
)

func TestBookRecordKeepsEmbedding(t *testing.T) {
	book := entity.NewBook("长夜")
	book.ID = 3
	book.SetWorldview("群星熄灭")
	book.WorldviewEmbedding.Apply([]float32{0.1, 0.2}, book.Worldview)

	rec := newBookRecord(book)
	assert.NotNil(t, rec.WorldviewVector)
	assert.Equal(t, "success", rec.WorldviewVectorStatus)

	back := rec.toEntity()
	assert.Equal(t, book.WorldviewEmbedding, back.WorldviewEmbedding)
	assert.Equal(t, int64(3), back.ID)
}

func TestEmptyEmbeddingIsNullColumn(t *testing.T) {
	c := entity.NewCharacter(1, "Anna", "")
	rec := newCharacterRecord(c)
	assert.Nil(t, rec.DescriptionVector)
	assert.False(t, rec.toEntity().DescriptionEmbedding.HasVector())

	ch := entity.NewChapter(1, "一", "content")
	ch.CreatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	chRec := newChapterRecord(ch)
	assert.Nil(t, chRec.ContentVector)
	assert.Equal(t, "processing", chRec.ContentVectorStatus)
	assert.Equal(t, ch.CreatedAt, chRec.toEntity().CreatedAt)
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "novel", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=novel sslmode=disable", dsn)
}
