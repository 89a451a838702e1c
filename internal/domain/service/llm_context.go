package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyModel    llmCtxKey = "llm_model"
)

// WithWorkflow 标记当前 LLM 调用所属的流程（keywords / writing / probe）
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	w := strings.TrimSpace(workflow)
	if w == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyWorkflow, w)
}

// WithModel 标记当前调用使用的模型
func WithModel(ctx context.Context, model string) context.Context {
	m := strings.TrimSpace(model)
	if m == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyModel, m)
}

func WorkflowFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyWorkflow)
}

func ModelFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyModel)
}

func stringFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
