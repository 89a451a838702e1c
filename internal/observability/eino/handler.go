package eino

import (
	"context"
	"errors"
	"io"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"z-novel-writer/internal/domain/service"
	"z-novel-writer/pkg/metrics"
)

// startTimeKey 在 Context 中记录调用开始时间，OnEnd/OnError 时计算耗时
type startTimeKey struct{}

// newChatModelCallbackHandler 对话模型回调：调用次数、耗时、token 与追踪 span
func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			return startSpan(ctx, "llm.generate", info, modelNameFromInput(ctx, input))
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			finish(ctx, modelNameFromOutput(ctx, output), tokenUsage(output), nil)
			return ctx
		},

		OnEndWithStreamOutput: func(ctx context.Context, _ *einocb.RunInfo, output *schema.StreamReader[*model.CallbackOutput]) context.Context {
			// 流式输出需在后台读完才能拿到 token 用量
			go func() {
				defer output.Close()

				modelName := service.ModelFromContext(ctx)
				var usage *model.TokenUsage
				for {
					frame, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						finish(ctx, modelName, usage, err)
						return
					}
					if frame == nil {
						continue
					}
					if frame.Config != nil && frame.Config.Model != "" {
						modelName = frame.Config.Model
					}
					if frame.TokenUsage != nil {
						usage = frame.TokenUsage
					}
				}
				finish(ctx, modelName, usage, nil)
			}()
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocb.RunInfo, err error) context.Context {
			finish(ctx, service.ModelFromContext(ctx), nil, err)
			return ctx
		},
	}
}

// newEmbeddingCallbackHandler 向量模型回调
func newEmbeddingCallbackHandler() *cbtemplate.EmbeddingCallbackHandler {
	return &cbtemplate.EmbeddingCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *embedding.CallbackInput) context.Context {
			name := service.ModelFromContext(ctx)
			if input != nil && input.Config != nil && input.Config.Model != "" {
				name = input.Config.Model
			}
			return startSpan(ctx, "llm.embed", info, name)
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *embedding.CallbackOutput) context.Context {
			name := service.ModelFromContext(ctx)
			var usage *model.TokenUsage
			if output != nil {
				if output.Config != nil && output.Config.Model != "" {
					name = output.Config.Model
				}
				if output.TokenUsage != nil {
					usage = &model.TokenUsage{
						PromptTokens:     output.TokenUsage.PromptTokens,
						CompletionTokens: output.TokenUsage.CompletionTokens,
						TotalTokens:      output.TokenUsage.TotalTokens,
					}
				}
			}
			finish(ctx, name, usage, nil)
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocb.RunInfo, err error) context.Context {
			finish(ctx, service.ModelFromContext(ctx), nil, err)
			return ctx
		},
	}
}

func startSpan(ctx context.Context, spanName string, info *einocb.RunInfo, modelName string) context.Context {
	ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

	attrs := []attribute.KeyValue{
		attribute.String("eino.workflow", service.WorkflowFromContext(ctx)),
		attribute.String("llm.model", modelName),
	}
	if info != nil {
		attrs = append(attrs,
			attribute.String("eino.node_name", info.Name),
			attribute.String("eino.type", info.Type),
		)
	}

	ctx, _ = otel.Tracer("eino").Start(ctx, spanName, trace.WithAttributes(attrs...))
	return ctx
}

// finish 上报指标并结束 span，err 非空记为失败
func finish(ctx context.Context, modelName string, usage *model.TokenUsage, err error) {
	workflow := service.WorkflowFromContext(ctx)
	if modelName == "" {
		modelName = "unknown"
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(workflow, modelName, status).Inc()
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.LLMCallDuration.WithLabelValues(workflow, modelName).Observe(d)
	}
	if usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(workflow, modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(workflow, modelName, "completion").Add(float64(usage.CompletionTokens))
	}

	span := trace.SpanFromContext(ctx)
	if usage != nil {
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// elapsedSeconds 返回自 OnStart 以来的秒数，未记录开始时间时为 0
func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func tokenUsage(out *model.CallbackOutput) *model.TokenUsage {
	if out == nil {
		return nil
	}
	return out.TokenUsage
}

func modelNameFromInput(ctx context.Context, in *model.CallbackInput) string {
	if in == nil || in.Config == nil || in.Config.Model == "" {
		return service.ModelFromContext(ctx)
	}
	return in.Config.Model
}

func modelNameFromOutput(ctx context.Context, out *model.CallbackOutput) string {
	if out == nil || out.Config == nil || out.Config.Model == "" {
		return service.ModelFromContext(ctx)
	}
	return out.Config.Model
}
