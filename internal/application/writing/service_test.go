package writing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/workflow/prompt"
	apperrors "z-novel-writer/pkg/errors"
)

type fakeRetriever struct {
	gotVector   []float32
	gotKeywords []string
	result      *retrieval.SearchResult
}

func (f *fakeRetriever) HybridSearch(_ context.Context, v []float32, _ int64, kws []string, _ retrieval.SearchOptions) *retrieval.SearchResult {
	f.gotVector, f.gotKeywords = v, kws
	if f.result == nil {
		return &retrieval.SearchResult{Characters: []retrieval.CharacterMatch{}}
	}
	return f.result
}

type fakeChapters struct {
	chapters []*entity.Chapter
	err      error
}

func (f *fakeChapters) GetRecent(_ context.Context, _ int64, limit int) ([]*entity.Chapter, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chapters) > limit {
		return f.chapters[:limit], nil
	}
	return f.chapters, nil
}

type fakeAI struct {
	keywords     []string
	keywordErr   error
	vector       []float32
	embedErr     error
	chunks       []string
	streamErr    error
	midStreamErr error
	gotMessages  []*schema.Message
}

func (f *fakeAI) ExtractKeywords(context.Context, string, service.AIConfig) ([]string, error) {
	return f.keywords, f.keywordErr
}

func (f *fakeAI) Embed(context.Context, string, service.AIConfig) (*service.VectorResponse, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return &service.VectorResponse{Vector: f.vector}, nil
}

func (f *fakeAI) Stream(_ context.Context, msgs []*schema.Message, _ service.AIConfig) (*schema.StreamReader[*schema.Message], error) {
	f.gotMessages = msgs
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	sr, sw := schema.Pipe[*schema.Message](len(f.chunks) + 1)
	go func() {
		defer sw.Close()
		for _, c := range f.chunks {
			sw.Send(schema.AssistantMessage(c, nil), nil)
		}
		if f.midStreamErr != nil {
			sw.Send(nil, f.midStreamErr)
		}
	}()
	return sr, nil
}

func newService(r Retriever, ch RecentChapterReader, ai *fakeAI) *Service {
	return NewService(r, ch, ai, ai, ai, prompt.NewRegistry(), Options{ContextTimeout: time.Second})
}

func collect(t *testing.T, ch <-chan StreamChunk) []StreamChunk {
	t.Helper()
	var out []StreamChunk
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, c)
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func TestPrepareAssemblesContext(t *testing.T) {
	r := &fakeRetriever{result: &retrieval.SearchResult{
		Worldview:  "云海之城",
		Characters: []retrieval.CharacterMatch{{Name: "林风", Description: "少年剑客"}},
	}}
	ch := &fakeChapters{chapters: []*entity.Chapter{
		{Title: "第三章", Content: "三"}, {Title: "第二章", Content: "二"}, {Title: "第一章", Content: "一"},
	}}
	ai := &fakeAI{keywords: []string{"林风"}, vector: []float32{0.1, 0.2}}

	p, err := newService(r, ch, ai).Prepare(context.Background(), Request{BookID: 1, Input: "写林风出城"})
	require.NoError(t, err)

	assert.Equal(t, []string{"林风"}, r.gotKeywords)
	assert.Equal(t, []float32{0.1, 0.2}, r.gotVector)
	assert.Equal(t, "[第三章]\n三\n\n[第二章]\n二", p.RecentChapters)
	require.Len(t, p.Messages, 1)
	assert.Contains(t, p.Messages[0].Content, "[世界观]\n云海之城")
	assert.Contains(t, p.Messages[0].Content, "- 林风: 少年剑客")
	assert.Contains(t, p.Messages[0].Content, "写林风出城")
	assert.NotContains(t, p.Messages[0].Content, "[第一章]")
}

func TestPrepareDegradesExternalFailures(t *testing.T) {
	r := &fakeRetriever{}
	ai := &fakeAI{keywordErr: errors.New("timeout"), embedErr: errors.New("401")}

	p, err := newService(r, &fakeChapters{err: errors.New("db down")}, ai).
		Prepare(context.Background(), Request{BookID: 1, Input: "继续"})
	require.NoError(t, err)

	assert.Empty(t, r.gotKeywords)
	assert.Nil(t, r.gotVector)
	assert.Empty(t, p.BackgroundMemory)
	assert.Empty(t, p.RecentChapters)
}

func TestPrepareWithoutBookSkipsRetrieval(t *testing.T) {
	r := &fakeRetriever{}
	p, err := newService(r, &fakeChapters{}, &fakeAI{}).Prepare(context.Background(), Request{Input: "随便写写"})
	require.NoError(t, err)

	assert.Nil(t, p.Result)
	assert.Nil(t, r.gotKeywords)
	require.Len(t, p.Messages, 1)
}

func TestPrepareRejectsEmptyInput(t *testing.T) {
	_, err := newService(&fakeRetriever{}, &fakeChapters{}, &fakeAI{}).Prepare(context.Background(), Request{Input: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
}

func TestGenerateStreamsContentThenDone(t *testing.T) {
	ai := &fakeAI{chunks: []string{"林风", "拔剑", ""}}
	chunks := collect(t, newService(&fakeRetriever{}, &fakeChapters{}, ai).Generate(context.Background(), Request{Input: "写"}))

	require.Len(t, chunks, 3)
	assert.Equal(t, StreamChunk{Type: ChunkContent, Content: "林风"}, chunks[0])
	assert.Equal(t, StreamChunk{Type: ChunkContent, Content: "拔剑"}, chunks[1])
	assert.Equal(t, ChunkDone, chunks[2].Type)
}

func TestGenerateReportsErrorsOnSameChannel(t *testing.T) {
	ai := &fakeAI{streamErr: apperrors.ErrAIConfigMissing}
	chunks := collect(t, newService(&fakeRetriever{}, &fakeChapters{}, ai).Generate(context.Background(), Request{Input: "写"}))

	require.Len(t, chunks, 1)
	assert.Equal(t, ChunkError, chunks[0].Type)
	assert.ErrorIs(t, chunks[0].Err, apperrors.ErrAIConfigMissing)
}

func TestGenerateReportsMidStreamError(t *testing.T) {
	ai := &fakeAI{chunks: []string{"林风"}, midStreamErr: errors.New("connection reset")}
	chunks := collect(t, newService(&fakeRetriever{}, &fakeChapters{}, ai).Generate(context.Background(), Request{Input: "写"}))

	require.Len(t, chunks, 2)
	assert.Equal(t, ChunkContent, chunks[0].Type)
	assert.Equal(t, ChunkError, chunks[1].Type)
	assert.ErrorIs(t, chunks[1].Err, apperrors.ErrLLMCallFailed)
}

func TestGenerateEmptyInputIsErrorChunk(t *testing.T) {
	chunks := collect(t, newService(&fakeRetriever{}, &fakeChapters{}, &fakeAI{}).Generate(context.Background(), Request{}))

	require.Len(t, chunks, 1)
	assert.Equal(t, ChunkError, chunks[0].Type)
}
