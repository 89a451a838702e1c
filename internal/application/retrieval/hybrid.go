package retrieval

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"z-novel-writer/pkg/metrics"
)

// HybridSearch 并发执行向量检索（强制关闭字面匹配）与关键词检索，然后合并打分。
// 两路检索各自降级，本方法不会失败。
func (e *Engine) HybridSearch(ctx context.Context, queryVector []float32, bookID int64, keywords []string, opts SearchOptions) *SearchResult {
	opts = opts.withFallback(e.defaults)
	opts.QueryText = ""

	ctx, span := tracer.Start(ctx, "retrieval.Engine.HybridSearch")
	span.SetAttributes(attribute.Int64("book_id", bookID))
	defer span.End()

	start := time.Now()
	var (
		vectorRes, keywordRes *SearchResult
		dbg                   DebugInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		vectorRes = e.VectorSearch(gctx, queryVector, bookID, opts)
		dbg.VectorSearchTimeMs = time.Since(t).Milliseconds()
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		keywordRes = e.KeywordSearchForBook(gctx, bookID, keywords)
		dbg.KeywordSearchTimeMs = time.Since(t).Milliseconds()
		return nil
	})
	_ = g.Wait()

	out := MergeResults(vectorRes, keywordRes, opts)

	dbg.VectorCandidates = len(vectorRes.Characters)
	dbg.KeywordCandidates = len(keywordRes.Characters)
	dbg.MergedCandidates = len(out.Characters)
	out.Debug = &dbg

	span.SetAttributes(attribute.Int("merged", dbg.MergedCandidates))
	metrics.RetrievalDuration.WithLabelValues(ModeHybrid).Observe(time.Since(start).Seconds())
	metrics.RetrievalResults.WithLabelValues(ModeHybrid).Observe(float64(dbg.MergedCandidates))
	return out
}

// MergeResults 合并向量与关键词结果。
// 世界观优先取向量结果；角色以名字为合并键，同名角色会被合并为一条，ID 只随结果携带。
// 综合分 = 相似度*VectorWeight + 关键词命中数*KeywordWeight，降序稳定排序。
func MergeResults(vector, keyword *SearchResult, opts SearchOptions) *SearchResult {
	opts = opts.withFallback(DefaultSearchOptions())
	if vector == nil {
		vector = emptyResult()
	}
	if keyword == nil {
		keyword = emptyResult()
	}

	out := emptyResult()
	switch {
	case vector.Worldview != "":
		out.Worldview = vector.Worldview
		out.WorldviewSimilarity = vector.WorldviewSimilarity
	case keyword.Worldview != "":
		out.Worldview = keyword.Worldview
		out.WorldviewSimilarity = keyword.WorldviewSimilarity
	}

	merged := make(map[string]*CharacterMatch, len(vector.Characters)+len(keyword.Characters))
	order := make([]string, 0, len(vector.Characters)+len(keyword.Characters))

	for _, c := range vector.Characters {
		key := c.Name
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		m := c
		m.KeywordMatches = 0
		merged[key] = &m
	}

	for _, c := range keyword.Characters {
		key := c.Name
		if existing, ok := merged[key]; ok {
			existing.KeywordMatches = c.KeywordMatches
			existing.Similarity = max(existing.Similarity, c.Similarity)
			continue
		}
		m := c
		merged[key] = &m
		order = append(order, key)
	}

	for _, key := range order {
		m := merged[key]
		m.CombinedScore = m.Similarity*opts.VectorWeight + float64(m.KeywordMatches)*opts.KeywordWeight
		out.Characters = append(out.Characters, *m)
	}
	sort.SliceStable(out.Characters, func(i, j int) bool {
		return out.Characters[i].CombinedScore > out.Characters[j].CombinedScore
	})
	return out
}
