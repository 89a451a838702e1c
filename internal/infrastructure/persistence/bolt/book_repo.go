package bolt

import (
	"context"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"z-novel-writer/internal/domain/entity"
)

// BookRepository 书籍仓储实现
type BookRepository struct {
	client *Client
}

// NewBookRepository 创建书籍仓储
func NewBookRepository(client *Client) *BookRepository {
	return &BookRepository{client: client}
}

// Create 创建书籍
func (r *BookRepository) Create(ctx context.Context, book *entity.Book) error {
	_, span := tracer.Start(ctx, "bolt.BookRepository.Create")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBooks)
		id, err := nextID(b)
		if err != nil {
			return err
		}
		book.ID = id
		return put(b, id, book)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取书籍
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*entity.Book, error) {
	_, span := tracer.Start(ctx, "bolt.BookRepository.GetByID")
	defer span.End()

	var book entity.Book
	var found bool
	err := r.client.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = get(tx.Bucket(bucketBooks), id, &book)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &book, nil
}

// List 获取全部书籍，最新创建的在前
func (r *BookRepository) List(ctx context.Context) ([]*entity.Book, error) {
	_, span := tracer.Start(ctx, "bolt.BookRepository.List")
	defer span.End()

	books := make([]*entity.Book, 0)
	err := r.client.db.View(func(tx *bbolt.Tx) error {
		return scan(tx.Bucket(bucketBooks), func(b *entity.Book) {
			books = append(books, b)
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	sort.SliceStable(books, func(i, j int) bool {
		if books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].ID > books[j].ID
		}
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, nil
}

// Update 更新书籍
func (r *BookRepository) Update(ctx context.Context, book *entity.Book) error {
	_, span := tracer.Start(ctx, "bolt.BookRepository.Update")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBooks)
		if b.Get(itob(book.ID)) == nil {
			return fmt.Errorf("book %d not found", book.ID)
		}
		return put(b, book.ID, book)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// SaveEmbedding 源文本未变时只写入向量字段
func (r *BookRepository) SaveEmbedding(ctx context.Context, id int64, text string, emb entity.Embedding) (bool, error) {
	_, span := tracer.Start(ctx, "bolt.BookRepository.SaveEmbedding")
	defer span.End()

	saved, err := saveEmbedding(r.client.db, bucketBooks, id, text, emb, func(b *entity.Book) (string, *entity.Embedding) {
		return b.Worldview, &b.WorldviewEmbedding
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to save book embedding: %w", err)
	}
	return saved, nil
}

// Delete 删除书籍，同一事务内级联删除角色与章节
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	_, span := tracer.Start(ctx, "bolt.BookRepository.Delete")
	defer span.End()

	err := r.client.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteChildren[entity.Character](tx.Bucket(bucketCharacters), id, func(c *entity.Character) (int64, int64) {
			return c.ID, c.BookID
		}); err != nil {
			return err
		}
		if err := deleteChildren[entity.Chapter](tx.Bucket(bucketChapters), id, func(c *entity.Chapter) (int64, int64) {
			return c.ID, c.BookID
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketBooks).Delete(itob(id))
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// deleteChildren 删除 bucket 中属于 bookID 的记录
func deleteChildren[T any](b *bbolt.Bucket, bookID int64, keys func(*T) (id, parent int64)) error {
	var ids []int64
	if err := scan(b, func(v *T) {
		if id, parent := keys(v); parent == bookID {
			ids = append(ids, id)
		}
	}); err != nil {
		return err
	}
	// ForEach 期间不能修改 bucket
	for _, id := range ids {
		if err := b.Delete(itob(id)); err != nil {
			return err
		}
	}
	return nil
}
