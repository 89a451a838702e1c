// Package vectorize 负责文本向量化任务的分发与执行
package vectorize

import (
	"context"
	"fmt"

	"z-novel-writer/internal/domain/entity"
)

// Kind 向量化目标类型
type Kind string

const (
	KindWorldview Kind = "worldview"
	KindCharacter Kind = "character"
	KindChapter   Kind = "chapter"
)

// Job 向量化任务，Digest 为入队时文本摘要，用于丢弃过期任务
type Job struct {
	Kind     Kind   `json:"kind"`
	BookID   int64  `json:"book_id"`
	TargetID int64  `json:"target_id"`
	Digest   string `json:"digest"`
}

// WorldviewJob 世界观向量化任务
func WorldviewJob(book *entity.Book) Job {
	return Job{Kind: KindWorldview, BookID: book.ID, TargetID: book.ID, Digest: entity.TextDigest(book.Worldview)}
}

// CharacterJob 角色描述向量化任务
func CharacterJob(c *entity.Character) Job {
	return Job{Kind: KindCharacter, BookID: c.BookID, TargetID: c.ID, Digest: entity.TextDigest(c.Description)}
}

// ChapterJob 章节内容向量化任务
func ChapterJob(c *entity.Chapter) Job {
	return Job{Kind: KindChapter, BookID: c.BookID, TargetID: c.ID, Digest: entity.TextDigest(c.Content)}
}

func (j Job) String() string {
	return fmt.Sprintf("%s#%d", j.Kind, j.TargetID)
}

// Dispatcher 向量化任务分发
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}
