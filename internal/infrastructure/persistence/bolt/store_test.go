package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/entity"
)

type repos struct {
	books      *BookRepository
	characters *CharacterRepository
	chapters   *ChapterRepository
}

func openRepos(t *testing.T) repos {
	t.Helper()
	client, err := NewClient(&config.BoltConfig{Path: filepath.Join(t.TempDir(), "data", "novel.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return repos{
		books:      NewBookRepository(client),
		characters: NewCharacterRepository(client),
		chapters:   NewChapterRepository(client),
	}
}

func TestBookRoundTripKeepsVector(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)

	book := entity.NewBook("长夜")
	require.NoError(t, r.books.Create(ctx, book))
	assert.Equal(t, int64(1), book.ID)

	book.SetWorldview("群星熄灭后的第三纪元")
	book.WorldviewEmbedding.Apply([]float32{0.5, -0.25}, book.Worldview)
	require.NoError(t, r.books.Update(ctx, book))

	got, err := r.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []float32{0.5, -0.25}, got.WorldviewEmbedding.Vector)
	assert.Equal(t, entity.VectorStatusSuccess, got.WorldviewEmbedding.Status)
	assert.False(t, got.WorldviewEmbedding.Stale(got.Worldview))

	missing, err := r.books.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCharacterRequiresBook(t *testing.T) {
	r := openRepos(t)
	err := r.characters.Create(context.Background(), entity.NewCharacter(42, "Anna", "a"))
	assert.Error(t, err)
}

func TestDeleteBookCascades(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)

	keep := entity.NewBook("keep")
	drop := entity.NewBook("drop")
	require.NoError(t, r.books.Create(ctx, keep))
	require.NoError(t, r.books.Create(ctx, drop))

	require.NoError(t, r.characters.Create(ctx, entity.NewCharacter(drop.ID, "Anna", "a")))
	require.NoError(t, r.characters.Create(ctx, entity.NewCharacter(keep.ID, "Bob", "b")))
	require.NoError(t, r.chapters.Create(ctx, entity.NewChapter(drop.ID, "一", "x")))
	require.NoError(t, r.chapters.Create(ctx, entity.NewChapter(keep.ID, "二", "y")))

	require.NoError(t, r.books.Delete(ctx, drop.ID))

	gone, err := r.books.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	chars, err := r.characters.ListByBook(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, chars)
	chapters, err := r.chapters.ListByBook(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, chapters)

	chars, err = r.characters.ListByBook(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "Bob", chars[0].Name)
}

func TestChaptersNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)

	book := entity.NewBook("b")
	require.NoError(t, r.books.Create(ctx, book))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		ch := entity.NewChapter(book.ID, title, title)
		ch.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, r.chapters.Create(ctx, ch))
	}
	// 与 third 同一时间，ID 更大者排前
	tie := entity.NewChapter(book.ID, "tie", "tie")
	tie.CreatedAt = base.Add(2 * time.Hour)
	require.NoError(t, r.chapters.Create(ctx, tie))

	recent, err := r.chapters.GetRecent(ctx, book.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "tie", recent[0].Title)
	assert.Equal(t, "third", recent[1].Title)

	all, err := r.chapters.ListByBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "first", all[3].Title)
}

func TestListBooksNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)

	older := entity.NewBook("older")
	older.CreatedAt = time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := entity.NewBook("newer")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	require.NoError(t, r.books.Create(ctx, older))
	require.NoError(t, r.books.Create(ctx, newer))

	books, err := r.books.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "newer", books[0].Title)
}

func TestUpdateMissingFails(t *testing.T) {
	r := openRepos(t)
	err := r.chapters.Update(context.Background(), &entity.Chapter{ID: 7, BookID: 1})
	assert.Error(t, err)
}

func TestSaveEmbeddingComparesSourceText(t *testing.T) {
	r := openRepos(t)
	ctx := context.Background()
	book := entity.NewBook("b")
	require.NoError(t, r.books.Create(ctx, book))
	c := entity.NewCharacter(book.ID, "Anna", "红发剑士")
	require.NoError(t, r.characters.Create(ctx, c))

	c.Name = "安娜"
	require.NoError(t, r.characters.Update(ctx, c))

	var emb entity.Embedding
	emb.Apply([]float32{1, 2}, "红发剑士")
	saved, err := r.characters.SaveEmbedding(ctx, c.ID, "红发剑士", emb)
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := r.characters.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "安娜", got.Name)
	assert.Equal(t, []float32{1, 2}, got.DescriptionEmbedding.Vector)

	c.SetDescription("黑发法师")
	require.NoError(t, r.characters.Update(ctx, c))
	saved, err = r.characters.SaveEmbedding(ctx, c.ID, "红发剑士", emb)
	require.NoError(t, err)
	assert.False(t, saved)

	got, err = r.characters.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "黑发法师", got.Description)
	assert.False(t, got.DescriptionEmbedding.HasVector())

	saved, err = r.chapters.SaveEmbedding(ctx, 404, "", emb)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSaveWorldviewEmbeddingKeepsTitle(t *testing.T) {
	r := openRepos(t)
	ctx := context.Background()
	book := entity.NewBook("初稿")
	book.SetWorldview("浮空群岛")
	require.NoError(t, r.books.Create(ctx, book))

	book.Title = "定稿"
	require.NoError(t, r.books.Update(ctx, book))

	var emb entity.Embedding
	emb.Apply([]float32{0.5}, "浮空群岛")
	saved, err := r.books.SaveEmbedding(ctx, book.ID, "浮空群岛", emb)
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := r.books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "定稿", got.Title)
	assert.Equal(t, entity.VectorStatusSuccess, got.WorldviewEmbedding.Status)
}
