package vectorize

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/repository"
	"z-novel-writer/internal/domain/service"
	apperrors "z-novel-writer/pkg/errors"
	"z-novel-writer/pkg/logger"
	"z-novel-writer/pkg/metrics"
)

var tracer = otel.Tracer("vectorize")

// 任务结果状态（指标标签）
const (
	statusSuccess    = "success"
	statusFailed     = "failed"
	statusSuperseded = "superseded"
	statusMissing    = "missing"
	statusEmpty      = "empty"
)

// errUnknownKind 未知任务类型，不可重试
var errUnknownKind = errors.New("unknown embedding job kind")

// Service 执行向量化任务：生成向量并回写状态
type Service struct {
	books      repository.BookRepository
	characters repository.CharacterRepository
	chapters   repository.ChapterRepository
	embedder   service.EmbeddingClient
	aiConfig   service.AIConfig
}

// NewService 创建向量化服务
func NewService(
	books repository.BookRepository,
	characters repository.CharacterRepository,
	chapters repository.ChapterRepository,
	embedder service.EmbeddingClient,
	aiConfig service.AIConfig,
) *Service {
	return &Service{
		books:      books,
		characters: characters,
		chapters:   chapters,
		embedder:   embedder,
		aiConfig:   aiConfig,
	}
}

// target 任务对应的文本字段
type target struct {
	id        int64
	text      string
	embedding entity.Embedding
	save      func(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error)
}

func (s *Service) load(ctx context.Context, job Job) (*target, error) {
	switch job.Kind {
	case KindWorldview:
		book, err := s.books.GetByID(ctx, job.TargetID)
		if err != nil || book == nil {
			return nil, err
		}
		return &target{
			id:        book.ID,
			text:      book.Worldview,
			embedding: book.WorldviewEmbedding,
			save:      s.books.SaveEmbedding,
		}, nil
	case KindCharacter:
		character, err := s.characters.GetByID(ctx, job.TargetID)
		if err != nil || character == nil {
			return nil, err
		}
		return &target{
			id:        character.ID,
			text:      character.Description,
			embedding: character.DescriptionEmbedding,
			save:      s.characters.SaveEmbedding,
		}, nil
	case KindChapter:
		chapter, err := s.chapters.GetByID(ctx, job.TargetID)
		if err != nil || chapter == nil {
			return nil, err
		}
		return &target{
			id:        chapter.ID,
			text:      chapter.Content,
			embedding: chapter.ContentEmbedding,
			save:      s.chapters.SaveEmbedding,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, job.Kind)
	}
}

// Process 执行一次向量化任务。
// 目标已删除或文本已变化时直接跳过；生成失败时状态置为 error 并返回错误以便重试。
func (s *Service) Process(ctx context.Context, job Job) error {
	ctx, span := tracer.Start(ctx, "vectorize.Process",
		trace.WithAttributes(
			attribute.String("job.kind", string(job.Kind)),
			attribute.Int64("job.target_id", job.TargetID),
		))
	defer span.End()

	ctx = logger.WithContext(ctx, logger.BookIDKey, job.BookID)
	status := statusSuccess
	defer func() {
		metrics.EmbeddingJobsTotal.WithLabelValues(string(job.Kind), status).Inc()
	}()

	t, err := s.load(ctx, job)
	if err != nil {
		status = statusFailed
		span.RecordError(err)
		return err
	}
	if t == nil {
		status = statusMissing
		logger.Debug(ctx, "embedding target gone", "job", job.String())
		return nil
	}
	if job.Digest != "" && entity.TextDigest(t.text) != job.Digest {
		status = statusSuperseded
		return nil
	}
	if t.text == "" {
		status = statusEmpty
		return nil
	}

	resp, embedErr := s.embedder.Embed(ctx, t.text, s.aiConfig)

	emb := t.embedding
	if embedErr != nil {
		emb.Fail()
	} else {
		emb.Apply(resp.Vector, t.text)
	}

	// 生成期间文本可能被修改，由存储在同一次写入中比对源文本
	saved, err := t.save(ctx, t.id, t.text, emb)
	if err != nil {
		status = statusFailed
		span.RecordError(err)
		if embedErr != nil {
			logger.Error(ctx, "failed to mark embedding error", err, "job", job.String())
			return apperrors.Wrap(embedErr, apperrors.CodeEmbeddingFailed, "embedding failed")
		}
		return err
	}
	if !saved {
		status = statusSuperseded
		return nil
	}

	if embedErr != nil {
		status = statusFailed
		span.RecordError(embedErr)
		return apperrors.Wrap(embedErr, apperrors.CodeEmbeddingFailed, "embedding failed")
	}
	if emb.Status == entity.VectorStatusError {
		status = statusFailed
	}

	logger.Debug(ctx, "embedding stored", "job", job.String(), "dims", len(resp.Vector))
	return nil
}
