package dto

import (
	"z-novel-writer/internal/application/retrieval"
	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/service"
)

// AIConfigRequest 请求级 AI 配置，空字段使用服务端配置
type AIConfigRequest struct {
	APIKey          string `json:"api_key,omitempty"`
	APIURL          string `json:"api_url,omitempty"`
	Model           string `json:"model,omitempty"`
	EmbeddingAPIKey string `json:"embedding_api_key,omitempty"`
	EmbeddingAPIURL string `json:"embedding_api_url,omitempty"`
	EmbeddingModel  string `json:"embedding_model,omitempty"`
}

// ToAIConfig 转换为领域配置
func (r *AIConfigRequest) ToAIConfig() service.AIConfig {
	if r == nil {
		return service.AIConfig{}
	}
	return service.AIConfig{
		APIKey:          r.APIKey,
		APIURL:          r.APIURL,
		Model:           r.Model,
		EmbeddingAPIKey: r.EmbeddingAPIKey,
		EmbeddingAPIURL: r.EmbeddingAPIURL,
		EmbeddingModel:  r.EmbeddingModel,
	}
}

// SearchRequest 检索请求
type SearchRequest struct {
	Query    string   `json:"query" binding:"required,max=5000"`
	Mode     string   `json:"mode,omitempty" binding:"omitempty,oneof=hybrid vector literal keyword"`
	Keywords []string `json:"keywords,omitempty"`

	WorldviewThreshold float64 `json:"worldview_threshold,omitempty" binding:"gte=0,lte=1"`
	CharacterThreshold float64 `json:"character_threshold,omitempty" binding:"gte=0,lte=1"`
	VectorWeight       float64 `json:"vector_weight,omitempty" binding:"gte=0"`
	KeywordWeight      float64 `json:"keyword_weight,omitempty" binding:"gte=0"`

	Debug    bool             `json:"debug,omitempty"`
	AIConfig *AIConfigRequest `json:"ai_config,omitempty"`
}

// SearchOptions 请求中的阈值与权重，未设置的由引擎回落默认值
func (r *SearchRequest) SearchOptions() retrieval.SearchOptions {
	return retrieval.SearchOptions{
		WorldviewThreshold: r.WorldviewThreshold,
		CharacterThreshold: r.CharacterThreshold,
		VectorWeight:       r.VectorWeight,
		KeywordWeight:      r.KeywordWeight,
	}
}

// CharacterMatchResponse 命中角色
type CharacterMatchResponse struct {
	ID              int64   `json:"id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Similarity      float64 `json:"similarity"`
	SimilarityLabel string  `json:"similarity_label"`
	KeywordMatches  int     `json:"keyword_matches"`
	CombinedScore   float64 `json:"combined_score"`
}

// SearchDebug 检索调试信息
type SearchDebug struct {
	VectorSearchTimeMs  int64 `json:"vector_search_time_ms"`
	KeywordSearchTimeMs int64 `json:"keyword_search_time_ms"`
	VectorCandidates    int   `json:"vector_candidates"`
	KeywordCandidates   int   `json:"keyword_candidates"`
	MergedCandidates    int   `json:"merged_candidates"`
	EmbeddingDims       int   `json:"embedding_dims"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Mode                string                    `json:"mode"`
	Keywords            []string                  `json:"keywords"`
	Worldview           string                    `json:"worldview,omitempty"`
	WorldviewSimilarity float64                   `json:"worldview_similarity,omitempty"`
	Characters          []*CharacterMatchResponse `json:"characters"`
	Debug               *SearchDebug              `json:"debug,omitempty"`
}

// ToSearchResponse 转换检索结果
func ToSearchResponse(mode string, keywords []string, result *retrieval.SearchResult) *SearchResponse {
	if keywords == nil {
		keywords = []string{}
	}
	resp := &SearchResponse{
		Mode:                mode,
		Keywords:            keywords,
		Worldview:           result.Worldview,
		WorldviewSimilarity: result.WorldviewSimilarity,
		Characters:          make([]*CharacterMatchResponse, 0, len(result.Characters)),
	}
	for _, c := range result.Characters {
		resp.Characters = append(resp.Characters, &CharacterMatchResponse{
			ID:              c.ID,
			Name:            c.Name,
			Description:     c.Description,
			Similarity:      c.Similarity,
			SimilarityLabel: entity.FormatSimilarity(c.Similarity),
			KeywordMatches:  c.KeywordMatches,
			CombinedScore:   c.CombinedScore,
		})
	}
	return resp
}

// ToSearchDebug 转换调试信息，dims 为查询向量维度
func ToSearchDebug(info *retrieval.DebugInfo, dims int) *SearchDebug {
	d := &SearchDebug{EmbeddingDims: dims}
	if info != nil {
		d.VectorSearchTimeMs = info.VectorSearchTimeMs
		d.KeywordSearchTimeMs = info.KeywordSearchTimeMs
		d.VectorCandidates = info.VectorCandidates
		d.KeywordCandidates = info.KeywordCandidates
		d.MergedCandidates = info.MergedCandidates
	}
	return d
}

// GenerateRequest 写作生成请求
type GenerateRequest struct {
	BookID   int64            `json:"book_id" binding:"gte=0"`
	Input    string           `json:"input" binding:"required,max=20000"`
	AIConfig *AIConfigRequest `json:"ai_config,omitempty"`
}

// AITestRequest AI 连通性测试请求
type AITestRequest struct {
	AIConfig *AIConfigRequest `json:"ai_config,omitempty"`
}

// AITestResponse AI 连通性测试响应
type AITestResponse struct {
	OK      bool   `json:"ok"`
	Model   string `json:"model"`
	Dims    int    `json:"dims,omitempty"`
	Message string `json:"message,omitempty"`
}
