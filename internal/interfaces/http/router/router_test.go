package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-writer/internal/application/library"
	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/application/vectorize"
	"z-novel-writer/internal/application/writing"
	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/infrastructure/persistence/bolt"
	"z-novel-writer/internal/interfaces/http/handler"
	"z-novel-writer/internal/interfaces/http/middleware"
	apperrors "z-novel-writer/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, vectorize.Job) error { return nil }

// fakeAI 同时充当关键词提取、向量化与连通性探测
type fakeAI struct {
	keywords []string
	vector   []float32
	pingErr  error

	mu      sync.Mutex
	lastCfg service.AIConfig
}

func (f *fakeAI) ExtractKeywords(_ context.Context, _ string, cfg service.AIConfig) ([]string, error) {
	f.record(cfg)
	return f.keywords, nil
}

func (f *fakeAI) Embed(_ context.Context, _ string, cfg service.AIConfig) (*service.VectorResponse, error) {
	f.record(cfg)
	if f.vector == nil {
		return nil, apperrors.ErrEmbeddingFailed
	}
	return &service.VectorResponse{Vector: f.vector}, nil
}

func (f *fakeAI) Ping(_ context.Context, cfg service.AIConfig) error {
	f.record(cfg)
	return f.pingErr
}

func (f *fakeAI) PingEmbedding(_ context.Context, cfg service.AIConfig) (int, error) {
	f.record(cfg)
	if f.pingErr != nil {
		return 0, f.pingErr
	}
	return 1536, nil
}

func (f *fakeAI) record(cfg service.AIConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCfg = cfg
}

type fakeGenerator struct {
	chunks []writing.StreamChunk
	got    writing.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req writing.Request) <-chan writing.StreamChunk {
	g.got = req
	ch := make(chan writing.StreamChunk, len(g.chunks))
	for _, c := range g.chunks {
		ch <- c
	}
	close(ch)
	return ch
}

type countingLimiter struct {
	calls map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.calls[key]++
	return l.calls[key] <= limit, nil
}

type brokenChecker struct{}

func (brokenChecker) HealthCheck(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	engine    *gin.Engine
	ai        *fakeAI
	generator *fakeGenerator
}

func newTestServer(t *testing.T, limiter *countingLimiter, deps ...handler.Dependency) *testServer {
	t.Helper()
	client, err := bolt.NewClient(&config.BoltConfig{Path: filepath.Join(t.TempDir(), "router.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	books := bolt.NewBookRepository(client)
	characters := bolt.NewCharacterRepository(client)
	chapters := bolt.NewChapterRepository(client)

	lib := library.NewService(books, characters, chapters, nopDispatcher{})
	engine := retrieval.NewEngine(books, characters, retrieval.DefaultSearchOptions())
	ai := &fakeAI{keywords: []string{"铁匠"}}
	gen := &fakeGenerator{}
	defaults := service.AIConfig{APIKey: "sk-server", Model: "gpt-server"}

	cfg := &config.Config{}
	cfg.App.Name = "z-novel-writer-test"
	cfg.Security.RateLimit = config.RateLimitConfig{
		Enabled:                   true,
		RequestsPerMinute:         100,
		GenerateRequestsPerMinute: 1,
	}

	if len(deps) == 0 {
		deps = []handler.Dependency{{Name: "bolt", Checker: client, Required: true}}
	}

	var rl middleware.RateLimiter
	if limiter != nil {
		rl = limiter
	}

	r := NewWithDeps(cfg, &RouterHandlers{
		Health:    handler.NewHealthHandler("v-test", deps...),
		Book:      handler.NewBookHandler(lib),
		Character: handler.NewCharacterHandler(lib),
		Chapter:   handler.NewChapterHandler(lib),
		Search:    handler.NewSearchHandler(lib, retrieval.NewQuerier(engine, ai, ai), defaults),
		Writing:   handler.NewWritingHandler(gen, defaults),
		AI:        handler.NewAIHandler(ai, defaults),
	}, rl)

	return &testServer{engine: r.Engine(), ai: ai, generator: gen}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}
	s.engine.ServeHTTP(w, req)
	return w.ResponseRecorder
}

// streamRecorder 为 c.Stream 提供 CloseNotify
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"error_code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestBookLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/v1/books", map[string]string{"title": "云海"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var book struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	decode(t, w, &book)
	assert.Equal(t, "云海", book.Title)
	require.NotZero(t, book.ID)

	w = s.do(t, http.MethodGet, "/v1/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	decode(t, w, &list)
	assert.Len(t, list, 1)

	w = s.do(t, http.MethodPut, "/v1/books/1/worldview", map[string]string{"content": "浮空岛屿"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/books/1/worldview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "浮空岛屿")

	w = s.do(t, http.MethodDelete, "/v1/books/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/v1/books/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(apperrors.CodeBookNotFound), env.Error.ErrorCode)
}

func TestCreateBookValidation(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/v1/books", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/books/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCharacterRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/books", map[string]string{"title": "云海"}).Code)

	w := s.do(t, http.MethodPost, "/v1/books/1/characters", map[string]string{"name": "Anna", "description": "持剑的少女"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var char struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	decode(t, w, &char)
	assert.Equal(t, "Anna", char.Name)

	w = s.do(t, http.MethodPut, "/v1/characters/1", map[string]string{"description": "退役的铁匠"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "退役的铁匠")

	w = s.do(t, http.MethodPost, "/v1/books/9/characters", map[string]string{"name": "Bob"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/v1/characters/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/v1/characters/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChapterRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/books", map[string]string{"title": "云海"}).Code)

	w := s.do(t, http.MethodPost, "/v1/books/1/chapters", map[string]string{"title": "第一章", "content": "风起"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/books/1/chapters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chapters []map[string]any
	decode(t, w, &chapters)
	assert.Len(t, chapters, 1)

	w = s.do(t, http.MethodDelete, "/v1/chapters/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSearchRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/books", map[string]string{"title": "云海"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/books/1/characters",
		map[string]string{"name": "Bob", "description": "沉默的铁匠"}).Code)

	t.Run("literal", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/books/1/search", map[string]any{"query": "铁匠", "mode": "literal", "debug": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Mode       string `json:"mode"`
			Characters []struct {
				Name            string `json:"name"`
				SimilarityLabel string `json:"similarity_label"`
			} `json:"characters"`
			Debug *struct {
				EmbeddingDims int `json:"embedding_dims"`
			} `json:"debug"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "literal", resp.Mode)
		require.Len(t, resp.Characters, 1)
		assert.Equal(t, "Bob", resp.Characters[0].Name)
		assert.Equal(t, "99%", resp.Characters[0].SimilarityLabel)
		require.NotNil(t, resp.Debug)
		assert.Zero(t, resp.Debug.EmbeddingDims)
	})

	t.Run("hybrid degrades without vectors", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/books/1/search", map[string]any{
			"query":     "谁会打铁",
			"ai_config": map[string]string{"model": "gpt-request"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Mode       string   `json:"mode"`
			Keywords   []string `json:"keywords"`
			Characters []struct {
				Name           string `json:"name"`
				KeywordMatches int    `json:"keyword_matches"`
			} `json:"characters"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "hybrid", resp.Mode)
		assert.Equal(t, []string{"铁匠"}, resp.Keywords)
		require.Len(t, resp.Characters, 1)
		assert.Equal(t, 1, resp.Characters[0].KeywordMatches)

		s.ai.mu.Lock()
		defer s.ai.mu.Unlock()
		assert.Equal(t, "sk-server", s.ai.lastCfg.APIKey)
		assert.Equal(t, "gpt-request", s.ai.lastCfg.Model)
	})

	t.Run("vector mode fails without embedding", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/books/1/search", map[string]any{"query": "铁匠", "mode": "vector"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("unknown mode", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/books/1/search", map[string]any{"query": "铁匠", "mode": "fuzzy"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing book", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/v1/books/42/search", map[string]any{"query": "铁匠"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestWritingStream(t *testing.T) {
	s := newTestServer(t, nil)
	s.generator.chunks = []writing.StreamChunk{
		{Type: writing.ChunkContent, Content: "风"},
		{Type: writing.ChunkContent, Content: "起"},
		{Type: writing.ChunkDone},
	}

	w := s.do(t, http.MethodPost, "/v1/writing/generate", map[string]any{"input": "继续写", "book_id": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:content"))
	assert.Contains(t, body, `"chunk":"风"`)
	assert.Contains(t, body, "event:done")
	assert.NotContains(t, body, "event:error")

	assert.Equal(t, "继续写", s.generator.got.Input)
	assert.Equal(t, "sk-server", s.generator.got.AIConfig.APIKey)
}

func TestWritingStreamError(t *testing.T) {
	s := newTestServer(t, nil)
	s.generator.chunks = []writing.StreamChunk{
		{Type: writing.ChunkContent, Content: "风"},
		{Type: writing.ChunkError, Err: apperrors.ErrLLMCallFailed.WithDetail("upstream 500")},
	}

	w := s.do(t, http.MethodPost, "/v1/writing/generate", map[string]any{"input": "继续写"})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "event:error")
	assert.Contains(t, body, string(apperrors.CodeLLMCallFailed))
	assert.Contains(t, body, "upstream 500")
	assert.NotContains(t, body, "event:done")
}

func TestWritingValidation(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/v1/writing/generate", map[string]any{"book_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.generator.got.Input)
}

func TestAIProbe(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/v1/ai/test-embedding", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		OK   bool `json:"ok"`
		Dims int  `json:"dims"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, 1536, resp.Dims)

	s.ai.pingErr = errors.New("401 unauthorized")
	w = s.do(t, http.MethodPost, "/v1/ai/test", map[string]any{"ai_config": map[string]string{"api_key": "sk-bad"}})
	require.Equal(t, http.StatusOK, w.Code)
	var failed struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	decode(t, w, &failed)
	assert.False(t, failed.OK)
	assert.Contains(t, failed.Message, "401")
	assert.Equal(t, "sk-bad", s.ai.lastCfg.APIKey)
}

func TestRequestURLNeverReceivesServerKey(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/books", map[string]string{"title": "云海"}).Code)

	overrides := []map[string]string{
		{"api_url": "http://attacker.example"},
		{"embedding_api_url": "http://attacker.example"},
		{"api_url": "http://attacker.example", "embedding_api_url": "http://attacker.example"},
	}
	requests := []struct {
		path string
		body func(map[string]string) map[string]any
	}{
		{"/v1/ai/test", func(o map[string]string) map[string]any { return map[string]any{"ai_config": o} }},
		{"/v1/ai/test-embedding", func(o map[string]string) map[string]any { return map[string]any{"ai_config": o} }},
		{"/v1/books/1/search", func(o map[string]string) map[string]any {
			return map[string]any{"query": "铁匠", "ai_config": o}
		}},
	}

	for _, o := range overrides {
		for _, r := range requests {
			s.do(t, http.MethodPost, r.path, r.body(o))

			s.ai.mu.Lock()
			cfg := s.ai.lastCfg.Normalize()
			s.ai.mu.Unlock()
			if cfg.APIURL == "http://attacker.example" {
				assert.NotEqual(t, "sk-server", cfg.APIKey, r.path)
			}
			if cfg.EmbeddingAPIURL == "http://attacker.example" {
				assert.NotEqual(t, "sk-server", cfg.EmbeddingAPIKey, r.path)
			}
		}

		w := s.do(t, http.MethodPost, "/v1/writing/generate", map[string]any{
			"book_id": 1, "input": "继续", "ai_config": o,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		cfg := s.generator.got.AIConfig.Normalize()
		if cfg.APIURL == "http://attacker.example" {
			assert.NotEqual(t, "sk-server", cfg.APIKey)
		}
		if cfg.EmbeddingAPIURL == "http://attacker.example" {
			assert.NotEqual(t, "sk-server", cfg.EmbeddingAPIKey)
		}
	}

	w := s.do(t, http.MethodPost, "/v1/ai/test", map[string]any{
		"ai_config": map[string]string{"api_url": "https://proxy.example.com/v1", "api_key": "sk-request"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sk-request", s.ai.lastCfg.APIKey)
	assert.Equal(t, "https://proxy.example.com/v1", s.ai.lastCfg.APIURL)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "v-test")

	w = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestReadyReportsDependencies(t *testing.T) {
	s := newTestServer(t, nil,
		handler.Dependency{Name: "redis", Checker: brokenChecker{}, Required: false},
	)
	w := s.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)

	s = newTestServer(t, nil,
		handler.Dependency{Name: "postgres", Checker: brokenChecker{}, Required: true},
	)
	w = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")
}

func TestGenerateRateLimit(t *testing.T) {
	limiter := &countingLimiter{calls: map[string]int{}}
	s := newTestServer(t, limiter)
	s.generator.chunks = []writing.StreamChunk{{Type: writing.ChunkDone}}

	w := s.do(t, http.MethodPost, "/v1/writing/generate", map[string]any{"input": "继续写"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/v1/writing/generate", map[string]any{"input": "继续写"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// 其他接口使用独立配额
	w = s.do(t, http.MethodGet, "/v1/books", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
