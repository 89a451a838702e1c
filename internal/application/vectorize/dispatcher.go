package vectorize

import (
	"context"
	"sync"

	"z-novel-writer/internal/infrastructure/messaging"
	"z-novel-writer/pkg/logger"
)

// InlineDispatcher 在进程内执行向量化任务
type InlineDispatcher struct {
	svc   *Service
	async bool
	wg    sync.WaitGroup
}

// NewInlineDispatcher 创建进程内分发器，async 为 true 时任务在后台 goroutine 中执行
func NewInlineDispatcher(svc *Service, async bool) *InlineDispatcher {
	return &InlineDispatcher{svc: svc, async: async}
}

// Dispatch 执行或调度任务
func (d *InlineDispatcher) Dispatch(ctx context.Context, job Job) error {
	if !d.async {
		return d.svc.Process(ctx, job)
	}

	// 请求结束后任务仍需完成
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.svc.Process(bg, job); err != nil {
			logger.Error(bg, "background embedding failed", err, "job", job.String())
		}
	}()
	return nil
}

// Wait 等待后台任务结束
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

// Publisher 向量化任务发布端
type Publisher interface {
	PublishEmbeddingJob(ctx context.Context, msgType string, job *messaging.EmbeddingJobMessage) (string, error)
}

// QueueDispatcher 通过 Redis Stream 交给 embed-worker 执行
type QueueDispatcher struct {
	publisher Publisher
}

// NewQueueDispatcher 创建队列分发器
func NewQueueDispatcher(publisher Publisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher}
}

// Dispatch 发布任务
func (d *QueueDispatcher) Dispatch(ctx context.Context, job Job) error {
	id, err := d.publisher.PublishEmbeddingJob(ctx, MessageType(job.Kind), &messaging.EmbeddingJobMessage{
		Kind:     string(job.Kind),
		TargetID: job.TargetID,
		BookID:   job.BookID,
		Digest:   job.Digest,
	})
	if err != nil {
		return err
	}
	logger.Debug(ctx, "embedding job queued", "job", job.String(), "stream_id", id)
	return nil
}

// MessageType 任务类型对应的消息类型
func MessageType(kind Kind) string {
	switch kind {
	case KindWorldview:
		return messaging.TypeEmbedWorldview
	case KindCharacter:
		return messaging.TypeEmbedCharacter
	default:
		return messaging.TypeEmbedChapter
	}
}

// HandleMessage 消费端处理函数，注册到 messaging.Consumer
func (s *Service) HandleMessage(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.EmbeddingJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		// 载荷无法解析，重试无意义
		logger.Error(ctx, "invalid embedding job payload", err, "message_id", msg.ID)
		return nil
	}
	return s.Process(ctx, Job{
		Kind:     Kind(payload.Kind),
		BookID:   payload.BookID,
		TargetID: payload.TargetID,
		Digest:   payload.Digest,
	})
}
