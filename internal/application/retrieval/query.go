package retrieval

import (
	"context"
	"strings"

	"z-novel-writer/internal/domain/service"
	apperrors "z-novel-writer/pkg/errors"
	"z-novel-writer/pkg/logger"
)

// QueryRequest 按模式检索的请求，Keywords 为空时由模型提取
type QueryRequest struct {
	BookID   int64
	Text     string
	Mode     string
	Keywords []string
	Options  SearchOptions
	AIConfig service.AIConfig
}

// QueryResult 检索结果及中间产物
type QueryResult struct {
	Mode     string   `json:"mode"`
	Keywords []string `json:"keywords"`
	// Dims 查询向量维度，未向量化时为 0
	Dims   int           `json:"dims"`
	Result *SearchResult `json:"result"`
}

// Querier 负责关键词提取与查询向量化，再交给 Engine 打分
type Querier struct {
	engine   *Engine
	keywords service.KeywordExtractor
	embedder service.EmbeddingClient
}

// NewQuerier 创建查询器
func NewQuerier(engine *Engine, keywords service.KeywordExtractor, embedder service.EmbeddingClient) *Querier {
	return &Querier{engine: engine, keywords: keywords, embedder: embedder}
}

// Query 执行检索。混合模式下关键词或向量失败只降级；
// 单一模式（vector / keyword）缺少必需输入时返回错误。
func (q *Querier) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("query is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeHybrid
	}

	out := &QueryResult{Mode: mode, Keywords: []string{}}

	if mode == ModeHybrid || mode == ModeKeyword {
		out.Keywords = req.Keywords
		if len(out.Keywords) == 0 {
			kws, err := q.keywords.ExtractKeywords(ctx, text, req.AIConfig)
			if err != nil {
				if mode == ModeKeyword {
					return nil, err
				}
				logger.Warn(ctx, "keyword extraction failed, searching by vector only", "error", err.Error())
				kws = []string{}
			}
			out.Keywords = kws
		}
	}

	var vector []float32
	if mode == ModeHybrid || mode == ModeVector {
		resp, err := q.embedder.Embed(ctx, text, req.AIConfig)
		if err != nil {
			if mode == ModeVector {
				return nil, err
			}
			logger.Warn(ctx, "query embedding failed, searching by keywords only", "error", err.Error())
		} else {
			vector = resp.Vector
			out.Dims = len(vector)
		}
	}

	switch mode {
	case ModeVector:
		out.Result = q.engine.VectorSearch(ctx, vector, req.BookID, req.Options)
	case ModeLiteral:
		opts := req.Options
		opts.QueryText = text
		out.Result = q.engine.VectorSearch(ctx, nil, req.BookID, opts)
	case ModeKeyword:
		out.Result = q.engine.KeywordSearchForBook(ctx, req.BookID, out.Keywords)
	case ModeHybrid:
		out.Result = q.engine.HybridSearch(ctx, vector, req.BookID, out.Keywords, req.Options)
	default:
		return nil, apperrors.ErrInvalidParam.WithDetail("unknown search mode: " + mode)
	}
	return out, nil
}
