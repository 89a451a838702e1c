// Package writing 编排写作生成：关键词提取 -> 向量化 -> 混合检索 -> 组装提示词 -> 流式生成
package writing

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/workflow/prompt"
	apperrors "z-novel-writer/pkg/errors"
	"z-novel-writer/pkg/logger"
	"z-novel-writer/pkg/metrics"
)

var tracer = otel.Tracer("writing")

// Retriever 混合检索（port）
type Retriever interface {
	HybridSearch(ctx context.Context, queryVector []float32, bookID int64, keywords []string, opts retrieval.SearchOptions) *retrieval.SearchResult
}

// RecentChapterReader 最近章节读取（port）
type RecentChapterReader interface {
	GetRecent(ctx context.Context, bookID int64, limit int) ([]*entity.Chapter, error)
}

// Options 写作服务参数
type Options struct {
	RecentChapters int
	// ContextTimeout 关键词提取与向量化各自的超时，超时后降级为空
	ContextTimeout time.Duration
	Search         retrieval.SearchOptions
}

// Request 一次写作请求，BookID 为 0 时不注入书籍资料
type Request struct {
	BookID   int64
	Input    string
	AIConfig service.AIConfig
}

// Prepared 组装好的提示词及中间结果
type Prepared struct {
	Keywords         []string
	Result           *retrieval.SearchResult
	RecentChapters   string
	BackgroundMemory string
	Messages         []*schema.Message
}

type Service struct {
	retriever Retriever
	chapters  RecentChapterReader
	keywords  service.KeywordExtractor
	embedder  service.EmbeddingClient
	completer service.CompletionClient
	prompts   *prompt.Registry
	opts      Options
}

func NewService(
	retriever Retriever,
	chapters RecentChapterReader,
	keywords service.KeywordExtractor,
	embedder service.EmbeddingClient,
	completer service.CompletionClient,
	prompts *prompt.Registry,
	opts Options,
) *Service {
	if opts.RecentChapters <= 0 {
		opts.RecentChapters = DefaultRecentChapters
	}
	if opts.ContextTimeout <= 0 {
		opts.ContextTimeout = 20 * time.Second
	}
	return &Service{
		retriever: retriever,
		chapters:  chapters,
		keywords:  keywords,
		embedder:  embedder,
		completer: completer,
		prompts:   prompts,
		opts:      opts,
	}
}

// Prepare 构建背景资料与提示词。外部调用失败只降级，不返回错误
func (s *Service) Prepare(ctx context.Context, req Request) (*Prepared, error) {
	ctx, span := tracer.Start(ctx, "writing.Service.Prepare")
	span.SetAttributes(attribute.Int64("book_id", req.BookID))
	defer span.End()

	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("input is required")
	}

	p := &Prepared{Keywords: []string{}}
	if req.BookID != 0 {
		ctx = logger.WithContext(ctx, logger.BookIDKey, req.BookID)

		p.Keywords = s.extractKeywords(ctx, input, req.AIConfig)
		vector := s.embedQuery(ctx, input, req.AIConfig)

		p.Result = s.retriever.HybridSearch(ctx, vector, req.BookID, p.Keywords, s.opts.Search)
		p.BackgroundMemory = BuildBackgroundMemory(p.Result)

		chapters, err := s.chapters.GetRecent(ctx, req.BookID, s.opts.RecentChapters)
		if err != nil {
			logger.Warn(ctx, "failed to load recent chapters, continuing without them", "error", err.Error())
		}
		p.RecentChapters = BuildRecentChapters(chapters, s.opts.RecentChapters)

		logger.Debug(ctx, "writing context assembled",
			"keywords", p.Keywords,
			"characters", len(p.Result.Characters),
			"has_worldview", p.Result.Worldview != "",
		)
	}

	msgs, err := s.prompts.Format(ctx, prompt.PromptWritingV1, map[string]any{
		"recent_chapters":   p.RecentChapters,
		"background_memory": p.BackgroundMemory,
		"user_input":        input,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to build prompt")
	}
	p.Messages = msgs
	return p, nil
}

func (s *Service) extractKeywords(ctx context.Context, input string, cfg service.AIConfig) []string {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ContextTimeout)
	defer cancel()

	kws, err := s.keywords.ExtractKeywords(ctx, input, cfg)
	if err != nil {
		metrics.WritingContextDegraded.WithLabelValues("keywords").Inc()
		logger.Warn(ctx, "keyword extraction failed, continuing without keywords", "error", err.Error())
		return []string{}
	}
	return kws
}

func (s *Service) embedQuery(ctx context.Context, input string, cfg service.AIConfig) []float32 {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ContextTimeout)
	defer cancel()

	resp, err := s.embedder.Embed(ctx, input, cfg)
	if err != nil {
		metrics.WritingContextDegraded.WithLabelValues("embedding").Inc()
		logger.Warn(ctx, "query embedding failed, continuing with keywords only", "error", err.Error())
		return nil
	}
	return resp.Vector
}

// Generate 异步生成，所有错误都以 ChunkError 发送到返回的通道；
// 正常结束时最后一条为 ChunkDone。ctx 取消后通道关闭。
func (s *Service) Generate(ctx context.Context, req Request) <-chan StreamChunk {
	ch := make(chan StreamChunk, 16)

	go func() {
		defer close(ch)

		start := time.Now()
		status := "success"
		defer func() {
			metrics.WritingGenerationTotal.WithLabelValues(status).Inc()
			metrics.WritingGenerationDuration.Observe(time.Since(start).Seconds())
		}()

		send := func(c StreamChunk) bool {
			select {
			case ch <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(err error) {
			status = "error"
			logger.Error(ctx, "writing generation failed", err, "book_id", req.BookID)
			send(StreamChunk{Type: ChunkError, Err: err})
		}

		p, err := s.Prepare(ctx, req)
		if err != nil {
			fail(err)
			return
		}

		sr, err := s.completer.Stream(ctx, p.Messages, req.AIConfig)
		if err != nil {
			fail(err)
			return
		}
		defer sr.Close()

		for {
			msg, err := sr.Recv()
			if errors.Is(err, io.EOF) {
				send(StreamChunk{Type: ChunkDone})
				return
			}
			if err != nil {
				fail(apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "completion stream interrupted"))
				return
			}
			if msg == nil || msg.Content == "" {
				continue
			}
			if !send(StreamChunk{Type: ChunkContent, Content: msg.Content}) {
				status = "canceled"
				return
			}
		}
	}()

	return ch
}
