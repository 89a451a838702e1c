package retrieval

// 默认阈值与权重
const (
	DefaultWorldviewThreshold = 0.55
	DefaultCharacterThreshold = 0.6
	DefaultVectorWeight       = 0.7
	DefaultKeywordWeight      = 0.3

	// LiteralSimilarity 字面匹配命中时赋予的相似度
	LiteralSimilarity = 0.99
)

// SearchOptions 检索参数，非正数的阈值与权重使用默认值
type SearchOptions struct {
	WorldviewThreshold float64
	CharacterThreshold float64
	VectorWeight       float64
	KeywordWeight      float64

	// QueryText 非空时走字面匹配，不计算向量相似度；混合检索会忽略该字段
	QueryText string
}

// DefaultSearchOptions 返回默认检索参数
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		WorldviewThreshold: DefaultWorldviewThreshold,
		CharacterThreshold: DefaultCharacterThreshold,
		VectorWeight:       DefaultVectorWeight,
		KeywordWeight:      DefaultKeywordWeight,
	}
}

// withFallback 用 base 填补 o 中未设置的字段
func (o SearchOptions) withFallback(base SearchOptions) SearchOptions {
	if o.WorldviewThreshold <= 0 {
		o.WorldviewThreshold = base.WorldviewThreshold
	}
	if o.CharacterThreshold <= 0 {
		o.CharacterThreshold = base.CharacterThreshold
	}
	if o.VectorWeight <= 0 {
		o.VectorWeight = base.VectorWeight
	}
	if o.KeywordWeight <= 0 {
		o.KeywordWeight = base.KeywordWeight
	}
	return o
}

// CharacterMatch 命中的角色
type CharacterMatch struct {
	ID             int64   `json:"id,omitempty"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Similarity     float64 `json:"similarity"`
	KeywordMatches int     `json:"keyword_matches"`
	CombinedScore  float64 `json:"combined_score"`
}

// SearchResult 检索结果，Worldview 为空表示未命中
type SearchResult struct {
	Worldview           string           `json:"worldview,omitempty"`
	WorldviewSimilarity float64          `json:"worldview_similarity,omitempty"`
	Characters          []CharacterMatch `json:"characters"`

	Debug *DebugInfo `json:"-"`
}

// DebugInfo 混合检索耗时与候选数
type DebugInfo struct {
	VectorSearchTimeMs  int64
	KeywordSearchTimeMs int64
	VectorCandidates    int
	KeywordCandidates   int
	MergedCandidates    int
}

func emptyResult() *SearchResult {
	return &SearchResult{Characters: []CharacterMatch{}}
}
