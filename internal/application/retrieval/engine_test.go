package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-writer/internal/domain/entity"
)

type fakeStore struct {
	book    *entity.Book
	chars   []*entity.Character
	bookErr error
	listErr error
	panics  bool
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entity.Book, error) {
	if f.panics {
		panic("corrupted record")
	}
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	if f.book == nil || f.book.ID != id {
		return nil, nil
	}
	return f.book, nil
}

func (f *fakeStore) ListByBook(_ context.Context, bookID int64) ([]*entity.Character, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*entity.Character
	for _, c := range f.chars {
		if c.BookID == bookID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newBook(id int64, worldview string, vector []float32) *entity.Book {
	b := entity.NewBook("测试书")
	b.ID = id
	b.SetWorldview(worldview)
	if vector != nil {
		b.WorldviewEmbedding.Apply(vector, worldview)
	}
	return b
}

func newChar(id, bookID int64, name, desc string, vector []float32) *entity.Character {
	c := entity.NewCharacter(bookID, name, desc)
	c.ID = id
	if vector != nil {
		c.DescriptionEmbedding.Apply(vector, desc)
	}
	return c
}

func newEngine(store *fakeStore) *Engine {
	return NewEngine(store, store, DefaultSearchOptions())
}

func TestVectorSearchThresholdInclusive(t *testing.T) {
	store := &fakeStore{
		book: newBook(1, "云海之城", []float32{1, 0}),
		chars: []*entity.Character{
			newChar(10, 1, "Anna", "剑士", []float32{4, 3}),
		},
	}
	e := newEngine(store)
	query := []float32{3, 4}

	res := e.VectorSearch(context.Background(), query, 1, SearchOptions{CharacterThreshold: 0.96})
	require.Len(t, res.Characters, 1)
	assert.Equal(t, 0.96, res.Characters[0].Similarity)

	res = e.VectorSearch(context.Background(), query, 1, SearchOptions{CharacterThreshold: math.Nextafter(0.96, 1)})
	assert.Empty(t, res.Characters)
}

func TestVectorSearchRanksAndFilters(t *testing.T) {
	store := &fakeStore{
		book: newBook(1, "云海之城", []float32{1, 0, 0}),
		chars: []*entity.Character{
			newChar(10, 1, "Low", "无关", []float32{0, 1, 0}),
			newChar(11, 1, "Mid", "有点像", []float32{0.8, 0.6, 0}),
			newChar(12, 1, "High", "很像", []float32{1, 0.1, 0}),
			newChar(13, 1, "NoVector", "未向量化", nil),
			newChar(14, 1, "WrongDim", "维度不同", []float32{1, 0}),
		},
	}
	e := newEngine(store)

	res := e.VectorSearch(context.Background(), []float32{1, 0, 0}, 1, SearchOptions{})

	assert.Equal(t, "云海之城", res.Worldview)
	require.Len(t, res.Characters, 2)
	assert.Equal(t, "High", res.Characters[0].Name)
	assert.Equal(t, "Mid", res.Characters[1].Name)
	assert.Equal(t, int64(12), res.Characters[0].ID)
}

func TestVectorSearchWorldviewBelowThreshold(t *testing.T) {
	store := &fakeStore{book: newBook(1, "云海之城", []float32{0, 1})}
	res := newEngine(store).VectorSearch(context.Background(), []float32{1, 0}, 1, SearchOptions{})

	assert.Empty(t, res.Worldview)
	assert.NotNil(t, res.Characters)
}

func TestVectorSearchIgnoresStatus(t *testing.T) {
	c := newChar(10, 1, "Anna", "剑士", []float32{1, 0})
	c.DescriptionEmbedding.Status = entity.VectorStatusError
	store := &fakeStore{book: newBook(1, "", nil), chars: []*entity.Character{c}}

	res := newEngine(store).VectorSearch(context.Background(), []float32{1, 0}, 1, SearchOptions{})

	require.Len(t, res.Characters, 1)
}

func TestVectorSearchUsesStaleVector(t *testing.T) {
	c := newChar(10, 1, "Anna", "剑士", []float32{1, 0})
	c.Description = "改写后的描述"
	store := &fakeStore{book: newBook(1, "", nil), chars: []*entity.Character{c}}

	res := newEngine(store).VectorSearch(context.Background(), []float32{1, 0}, 1, SearchOptions{})

	require.Len(t, res.Characters, 1)
	assert.Equal(t, "改写后的描述", res.Characters[0].Description)
}

func TestVectorSearchDegradesOnStorageFailure(t *testing.T) {
	cases := map[string]*fakeStore{
		"book error":    {bookErr: errors.New("disk gone")},
		"list error":    {book: newBook(1, "x", []float32{1}), listErr: errors.New("cursor broken")},
		"missing book":  {},
		"storage panic": {panics: true},
	}
	searches := map[string]func(*Engine) *SearchResult{
		"vector": func(e *Engine) *SearchResult {
			return e.VectorSearch(context.Background(), []float32{1}, 1, SearchOptions{})
		},
		"keyword": func(e *Engine) *SearchResult {
			return e.KeywordSearchForBook(context.Background(), 1, []string{"x"})
		},
		"hybrid": func(e *Engine) *SearchResult {
			return e.HybridSearch(context.Background(), []float32{1}, 1, []string{"x"}, SearchOptions{})
		},
	}
	for name, store := range cases {
		for kind, search := range searches {
			t.Run(kind+"/"+name, func(t *testing.T) {
				var res *SearchResult
				require.NotPanics(t, func() { res = search(newEngine(store)) })
				require.NotNil(t, res)
				assert.Empty(t, res.Worldview)
				assert.NotNil(t, res.Characters)
				assert.Empty(t, res.Characters)
			})
		}
	}
}

func TestLiteralSearchBypassesSimilarity(t *testing.T) {
	store := &fakeStore{
		book: newBook(1, "The Floating City", []float32{1, 0}),
		chars: []*entity.Character{
			newChar(10, 1, "Anna", "A swordswoman from the FLOATING city", []float32{1, 0}),
			newChar(11, 1, "Bob", "A merchant", nil),
			newChar(12, 1, "Cleo", "Guards the floating gate", nil),
		},
	}
	e := newEngine(store)
	e.similarity = func(a, b []float32) float64 {
		t.Fatal("similarity must not be called on the literal path")
		return 0
	}

	res := e.VectorSearch(context.Background(), nil, 1, SearchOptions{QueryText: "  floating "})

	assert.Equal(t, "The Floating City", res.Worldview)
	require.Len(t, res.Characters, 2)
	assert.Equal(t, "Anna", res.Characters[0].Name)
	assert.Equal(t, "Cleo", res.Characters[1].Name)
	for _, c := range res.Characters {
		assert.Equal(t, 0.99, c.Similarity)
	}
}

func TestKeywordSearchForBook(t *testing.T) {
	store := &fakeStore{
		book: newBook(1, "魔法学院坐落在北境", nil),
		chars: []*entity.Character{
			newChar(10, 1, "Anna", "北境的魔法师", nil),
			newChar(11, 1, "Bob", "南方商人", nil),
			newChar(12, 1, "Cleo", "学院的魔法导师，来自北境", nil),
		},
	}
	e := newEngine(store)

	res := e.KeywordSearchForBook(context.Background(), 1, []string{"魔法", "北境", "学院", "龙"})

	assert.Equal(t, "魔法学院坐落在北境", res.Worldview)
	require.Len(t, res.Characters, 2)
	assert.Equal(t, "Cleo", res.Characters[0].Name)
	assert.Equal(t, 3, res.Characters[0].KeywordMatches)
	assert.InDelta(t, 0.75, res.Characters[0].Similarity, 1e-9)
	assert.Equal(t, "Anna", res.Characters[1].Name)
	assert.InDelta(t, 0.5, res.Characters[1].Similarity, 1e-9)
}

func TestKeywordSearchForBookCountsEveryEntry(t *testing.T) {
	store := &fakeStore{
		book:  newBook(1, "", nil),
		chars: []*entity.Character{newChar(10, 1, "Anna", "Anna the swordswoman", nil)},
	}

	res := newEngine(store).KeywordSearchForBook(context.Background(), 1, []string{"anna", "Anna", "dragon"})

	require.Len(t, res.Characters, 1)
	assert.Equal(t, 2, res.Characters[0].KeywordMatches)
	assert.InDelta(t, 2.0/3.0, res.Characters[0].Similarity, 1e-9)
}

func TestKeywordSearchForBookEmptyKeywords(t *testing.T) {
	store := &fakeStore{book: newBook(1, "北境", nil)}
	res := newEngine(store).KeywordSearchForBook(context.Background(), 1, nil)

	assert.Empty(t, res.Worldview)
	assert.Empty(t, res.Characters)
}

func TestKeywordSearchForBookDegrades(t *testing.T) {
	store := &fakeStore{bookErr: errors.New("boom")}
	res := newEngine(store).KeywordSearchForBook(context.Background(), 1, []string{"x"})

	assert.Empty(t, res.Worldview)
	assert.NotNil(t, res.Characters)
}
