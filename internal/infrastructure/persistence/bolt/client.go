// Package bolt 提供基于 bbolt 的嵌入式书库存储
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"

	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/repository"
)

var tracer = otel.Tracer("bolt")

var (
	bucketBooks      = []byte("books")
	bucketCharacters = []byte("characters")
	bucketChapters   = []byte("chapters")
)

// Client bbolt 客户端
type Client struct {
	db *bbolt.DB
}

// NewClient 打开（必要时创建）数据库文件并初始化 bucket
func NewClient(cfg *config.BoltConfig) (*Client, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketBooks, bucketCharacters, bucketChapters} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init buckets: %w", err)
	}

	return &Client{db: db}, nil
}

// DB 获取底层 bbolt 实例
func (c *Client) DB() *bbolt.DB {
	return c.db
}

// Close 关闭数据库
func (c *Client) Close() error {
	return c.db.Close()
}

// HealthCheck 健康检查
func (c *Client) HealthCheck(ctx context.Context) error {
	_, span := tracer.Start(ctx, "bolt.HealthCheck")
	defer span.End()

	return c.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketBooks) == nil {
			return fmt.Errorf("bucket %s missing", bucketBooks)
		}
		return nil
	})
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// get 读取并解码一条记录，不存在时返回 false
func get(b *bbolt.Bucket, id int64, v any) (bool, error) {
	raw := b.Get(itob(id))
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode record %d: %w", id, err)
	}
	return true, nil
}

func put(b *bbolt.Bucket, id int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(itob(id), raw)
}

// nextID 分配自增 ID
func nextID(b *bbolt.Bucket) (int64, error) {
	seq, err := b.NextSequence()
	if err != nil {
		return 0, err
	}
	return int64(seq), nil
}

// scan 按 ID 顺序遍历 bucket 中的记录
func scan[T any](b *bbolt.Bucket, fn func(*T)) error {
	return b.ForEach(func(_, raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		fn(&v)
		return nil
	})
}

// saveEmbedding 在同一个写事务内比对源文本并只替换向量字段
func saveEmbedding[T any](db *bbolt.DB, bucket []byte, id int64, text string, emb entity.Embedding,
	field func(*T) (string, *entity.Embedding)) (bool, error) {
	saved := false
	err := db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		var v T
		found, err := get(b, id, &v)
		if err != nil || !found {
			return err
		}
		current, slot := field(&v)
		if current != text {
			return nil
		}
		*slot = emb
		if err := put(b, id, &v); err != nil {
			return err
		}
		saved = true
		return nil
	})
	return saved, err
}

var (
	_ repository.BookRepository      = (*BookRepository)(nil)
	_ repository.CharacterRepository = (*CharacterRepository)(nil)
	_ repository.ChapterRepository   = (*ChapterRepository)(nil)
)
