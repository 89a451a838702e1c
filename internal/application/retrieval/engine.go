package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/pkg/logger"
	"z-novel-writer/pkg/metrics"
)

var tracer = otel.Tracer("retrieval")

// 检索模式
const (
	ModeVector  = "vector"
	ModeLiteral = "literal"
	ModeKeyword = "keyword"
	ModeHybrid  = "hybrid"
)

// Engine 单书籍范围内的检索引擎，每次查询都从存储重新读取并打分，不做缓存
type Engine struct {
	books      BookReader
	characters CharacterLister
	defaults   SearchOptions

	similarity func(a, b []float32) float64
}

func NewEngine(books BookReader, characters CharacterLister, defaults SearchOptions) *Engine {
	return &Engine{
		books:      books,
		characters: characters,
		defaults:   defaults.withFallback(DefaultSearchOptions()),
		similarity: CosineSimilarity,
	}
}

// Defaults 返回引擎的默认参数
func (e *Engine) Defaults() SearchOptions {
	return e.defaults
}

// VectorSearch 向量检索；QueryText 非空时改为字面匹配。
// 任何失败都会记录日志并返回空结果，不向上传播。
func (e *Engine) VectorSearch(ctx context.Context, queryVector []float32, bookID int64, opts SearchOptions) (result *SearchResult) {
	opts = opts.withFallback(e.defaults)
	mode := ModeVector
	if strings.TrimSpace(opts.QueryText) != "" {
		mode = ModeLiteral
	}

	ctx, span := tracer.Start(ctx, "retrieval.Engine.VectorSearch")
	span.SetAttributes(
		attribute.Int64("book_id", bookID),
		attribute.String("mode", mode),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error(ctx, "vector search panicked, returning empty result", err, "book_id", bookID)
			metrics.RetrievalDegraded.WithLabelValues(mode).Inc()
			result = emptyResult()
		}
		metrics.RetrievalDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
		metrics.RetrievalResults.WithLabelValues(mode).Observe(float64(len(result.Characters)))
	}()

	var err error
	if mode == ModeLiteral {
		result, err = e.literalSearch(ctx, bookID, opts.QueryText)
	} else {
		result, err = e.vectorScore(ctx, queryVector, bookID, opts)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "vector search failed, returning empty result", err, "book_id", bookID, "mode", mode)
		metrics.RetrievalDegraded.WithLabelValues(mode).Inc()
		return emptyResult()
	}
	return result
}

func (e *Engine) loadBook(ctx context.Context, bookID int64) (*entity.Book, []*entity.Character, error) {
	book, err := e.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load book %d: %w", bookID, err)
	}
	if book == nil {
		return nil, nil, fmt.Errorf("%w: %d", errBookMissing, bookID)
	}
	chars, err := e.characters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list characters of book %d: %w", bookID, err)
	}
	return book, chars, nil
}

func (e *Engine) vectorScore(ctx context.Context, queryVector []float32, bookID int64, opts SearchOptions) (*SearchResult, error) {
	out := emptyResult()
	if len(queryVector) == 0 {
		return out, nil
	}

	book, chars, err := e.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if wv := book.WorldviewEmbedding; wv.HasVector() {
		e.checkStale(ctx, "worldview", book.ID, wv, book.Worldview)
		sim := e.similarity(queryVector, wv.Vector)
		if sim >= opts.WorldviewThreshold {
			out.Worldview = book.Worldview
			out.WorldviewSimilarity = sim
		}
	}

	for _, c := range chars {
		emb := c.DescriptionEmbedding
		if !emb.HasVector() {
			continue
		}
		e.checkStale(ctx, "character", c.ID, emb, c.Description)
		sim := e.similarity(queryVector, emb.Vector)
		if sim < opts.CharacterThreshold {
			continue
		}
		out.Characters = append(out.Characters, CharacterMatch{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Similarity:  sim,
		})
	}

	sort.SliceStable(out.Characters, func(i, j int) bool {
		return out.Characters[i].Similarity > out.Characters[j].Similarity
	})
	return out, nil
}

// literalSearch 不区分大小写的子串匹配，命中项相似度固定为 LiteralSimilarity，保持存储顺序
func (e *Engine) literalSearch(ctx context.Context, bookID int64, queryText string) (*SearchResult, error) {
	book, chars, err := e.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(queryText))
	out := emptyResult()
	if book.Worldview != "" && strings.Contains(strings.ToLower(book.Worldview), q) {
		out.Worldview = book.Worldview
		out.WorldviewSimilarity = LiteralSimilarity
	}
	for _, c := range chars {
		if !strings.Contains(strings.ToLower(c.Description), q) {
			continue
		}
		out.Characters = append(out.Characters, CharacterMatch{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Similarity:  LiteralSimilarity,
		})
	}
	return out, nil
}

// checkStale 向量与当前文本不一致时只告警，不影响打分
func (e *Engine) checkStale(ctx context.Context, kind string, id int64, emb entity.Embedding, text string) {
	if !emb.Stale(text) {
		return
	}
	metrics.RetrievalStaleVectors.WithLabelValues(kind).Inc()
	logger.Warn(ctx, "stale vector scored, source text changed since embedding", "kind", kind, "id", id)
}

// KeywordSearchForBook 关键词检索：世界观命中任一关键词即返回；
// 角色相似度为命中数 / 关键词条目总数，按命中数降序。失败或 panic 时返回空结果。
func (e *Engine) KeywordSearchForBook(ctx context.Context, bookID int64, keywords []string) (result *SearchResult) {
	ctx, span := tracer.Start(ctx, "retrieval.Engine.KeywordSearchForBook")
	span.SetAttributes(attribute.Int64("book_id", bookID), attribute.Int("keywords", len(keywords)))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error(ctx, "keyword search panicked, returning empty result", err, "book_id", bookID)
			metrics.RetrievalDegraded.WithLabelValues(ModeKeyword).Inc()
			result = emptyResult()
		}
		metrics.RetrievalDuration.WithLabelValues(ModeKeyword).Observe(time.Since(start).Seconds())
		metrics.RetrievalResults.WithLabelValues(ModeKeyword).Observe(float64(len(result.Characters)))
	}()

	if len(keywords) == 0 {
		return emptyResult()
	}
	lowered := lowerKeywords(keywords)

	book, chars, err := e.loadBook(ctx, bookID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "keyword search failed, returning empty result", err, "book_id", bookID)
		metrics.RetrievalDegraded.WithLabelValues(ModeKeyword).Inc()
		return emptyResult()
	}

	out := emptyResult()
	if book.Worldview != "" && countMatches(book.Worldview, lowered) > 0 {
		out.Worldview = book.Worldview
	}

	total := float64(len(keywords))
	for _, c := range chars {
		n := countMatches(c.Description, lowered)
		if n == 0 {
			continue
		}
		out.Characters = append(out.Characters, CharacterMatch{
			ID:             c.ID,
			Name:           c.Name,
			Description:    c.Description,
			Similarity:     float64(n) / total,
			KeywordMatches: n,
		})
	}
	sort.SliceStable(out.Characters, func(i, j int) bool {
		return out.Characters[i].KeywordMatches > out.Characters[j].KeywordMatches
	})
	return out
}
