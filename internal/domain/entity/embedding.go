// Package entity 定义领域实体
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// VectorStatus 向量化状态，仅用于展示，不参与检索过滤
type VectorStatus string

const (
	VectorStatusNone       VectorStatus = ""
	VectorStatusProcessing VectorStatus = "processing"
	VectorStatusSuccess    VectorStatus = "success"
	VectorStatusError      VectorStatus = "error"
)

// Color 返回状态对应的界面颜色
func (s VectorStatus) Color() string {
	switch s {
	case VectorStatusProcessing:
		return "#FFC107"
	case VectorStatusSuccess:
		return "#4CAF50"
	case VectorStatusError:
		return "#F44336"
	default:
		return "transparent"
	}
}

// Label 返回状态的中文说明
func (s VectorStatus) Label() string {
	switch s {
	case VectorStatusProcessing:
		return "向量化中"
	case VectorStatusSuccess:
		return "已向量化"
	case VectorStatusError:
		return "向量化失败"
	default:
		return "未向量化"
	}
}

// FormatSimilarity 把相似度格式化为百分比，例如 0.8 -> "80%"
func FormatSimilarity(similarity float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(similarity*100)))
}

// TextDigest 计算文本摘要，用于判断向量是否仍对应当前文本
func TextDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}

// Embedding 文本字段对应的向量及其状态
type Embedding struct {
	Vector []float32    `json:"vector,omitempty"`
	Status VectorStatus `json:"status,omitempty"`
	// Digest 生成向量时源文本的摘要
	Digest string `json:"digest,omitempty"`
}

// HasVector 是否存在向量
func (e Embedding) HasVector() bool {
	return len(e.Vector) > 0
}

// Stale 向量存在但源文本已变化
func (e Embedding) Stale(text string) bool {
	if !e.HasVector() || e.Digest == "" {
		return false
	}
	return e.Digest != TextDigest(text)
}

// Reset 文本变更后清空向量，非空文本进入 processing
func (e *Embedding) Reset(text string) {
	e.Vector = nil
	e.Digest = ""
	if text == "" {
		e.Status = VectorStatusNone
		return
	}
	e.Status = VectorStatusProcessing
}

// Apply 写入针对 text 生成的向量，空向量视为失败
func (e *Embedding) Apply(vector []float32, text string) {
	if len(vector) == 0 {
		e.Fail()
		return
	}
	e.Vector = vector
	e.Digest = TextDigest(text)
	e.Status = VectorStatusSuccess
}

// Fail 标记向量化失败
func (e *Embedding) Fail() {
	e.Vector = nil
	e.Digest = ""
	e.Status = VectorStatusError
}
