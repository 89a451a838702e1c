// Package library 管理书籍、世界观、角色与章节
package library

import (
	"context"
	"strings"

	"z-novel-writer/internal/application/vectorize"
	"z-novel-writer/internal/domain/entity"
	"z-novel-writer/internal/domain/repository"
	apperrors "z-novel-writer/pkg/errors"
	"z-novel-writer/pkg/logger"
)

// Service 书库服务，文本变更后分发向量化任务
type Service struct {
	books      repository.BookRepository
	characters repository.CharacterRepository
	chapters   repository.ChapterRepository
	dispatcher vectorize.Dispatcher
}

// NewService 创建书库服务
func NewService(
	books repository.BookRepository,
	characters repository.CharacterRepository,
	chapters repository.ChapterRepository,
	dispatcher vectorize.Dispatcher,
) *Service {
	return &Service{
		books:      books,
		characters: characters,
		chapters:   chapters,
		dispatcher: dispatcher,
	}
}

// dispatch 分发失败只记录日志，写入本身已成功
func (s *Service) dispatch(ctx context.Context, job vectorize.Job) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		logger.Error(ctx, "failed to dispatch embedding job", err, "job", job.String())
	}
}

func storageError(err error, msg string) error {
	return apperrors.Wrap(err, apperrors.CodeStorageError, msg)
}

// CreateBook 创建书籍
func (s *Service) CreateBook(ctx context.Context, title string) (*entity.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("title is required")
	}
	book := entity.NewBook(title)
	if err := s.books.Create(ctx, book); err != nil {
		return nil, storageError(err, "failed to create book")
	}
	return book, nil
}

// ListBooks 获取全部书籍
func (s *Service) ListBooks(ctx context.Context) ([]*entity.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, storageError(err, "failed to list books")
	}
	return books, nil
}

// GetBook 获取书籍，不存在时返回 ErrBookNotFound
func (s *Service) GetBook(ctx context.Context, id int64) (*entity.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "failed to get book")
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}
	return book, nil
}

// DeleteBook 删除书籍及其角色、章节
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if _, err := s.GetBook(ctx, id); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return storageError(err, "failed to delete book")
	}
	logger.Info(ctx, "book deleted", "book_id", id)
	return nil
}

// SaveWorldview 保存世界观，书籍必须存在
func (s *Service) SaveWorldview(ctx context.Context, bookID int64, text string) (*entity.Book, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Worldview == text && book.WorldviewEmbedding.HasVector() {
		return book, nil
	}

	book.SetWorldview(text)
	if err := s.books.Update(ctx, book); err != nil {
		return nil, storageError(err, "failed to save worldview")
	}
	if text != "" {
		s.dispatch(ctx, vectorize.WorldviewJob(book))
	}
	return book, nil
}

// GetWorldview 获取世界观及其向量状态
func (s *Service) GetWorldview(ctx context.Context, bookID int64) (string, entity.VectorStatus, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return "", entity.VectorStatusNone, err
	}
	return book.Worldview, book.WorldviewEmbedding.Status, nil
}

// DeleteWorldview 删除世界观及其向量
func (s *Service) DeleteWorldview(ctx context.Context, bookID int64) error {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	book.ClearWorldview()
	if err := s.books.Update(ctx, book); err != nil {
		return storageError(err, "failed to delete worldview")
	}
	return nil
}

// SaveCharacter 新建角色
func (s *Service) SaveCharacter(ctx context.Context, bookID int64, name, description string) (*entity.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("name is required")
	}
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	character := entity.NewCharacter(bookID, name, description)
	if err := s.characters.Create(ctx, character); err != nil {
		return nil, storageError(err, "failed to create character")
	}
	if description != "" {
		s.dispatch(ctx, vectorize.CharacterJob(character))
	}
	return character, nil
}

// UpdateCharacter 修改角色描述，旧向量随之作废
func (s *Service) UpdateCharacter(ctx context.Context, id int64, description string) (*entity.Character, error) {
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "failed to get character")
	}
	if character == nil {
		return nil, apperrors.ErrCharacterNotFound
	}
	if character.Description == description && character.DescriptionEmbedding.HasVector() {
		return character, nil
	}

	character.SetDescription(description)
	if err := s.characters.Update(ctx, character); err != nil {
		return nil, storageError(err, "failed to update character")
	}
	if description != "" {
		s.dispatch(ctx, vectorize.CharacterJob(character))
	}
	return character, nil
}

// ListCharacters 获取书籍下的角色
func (s *Service) ListCharacters(ctx context.Context, bookID int64) ([]*entity.Character, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	characters, err := s.characters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, storageError(err, "failed to list characters")
	}
	return characters, nil
}

// DeleteCharacter 删除角色
func (s *Service) DeleteCharacter(ctx context.Context, id int64) error {
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return storageError(err, "failed to get character")
	}
	if character == nil {
		return apperrors.ErrCharacterNotFound
	}
	if err := s.characters.Delete(ctx, id); err != nil {
		return storageError(err, "failed to delete character")
	}
	return nil
}

// SaveChapter 新建章节
func (s *Service) SaveChapter(ctx context.Context, bookID int64, title, content string) (*entity.Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("title is required")
	}
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	chapter := entity.NewChapter(bookID, title, content)
	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, storageError(err, "failed to create chapter")
	}
	if content != "" {
		s.dispatch(ctx, vectorize.ChapterJob(chapter))
	}
	return chapter, nil
}

// ListChapters 获取书籍下的章节，最新的在前
func (s *Service) ListChapters(ctx context.Context, bookID int64) ([]*entity.Chapter, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	chapters, err := s.chapters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, storageError(err, "failed to list chapters")
	}
	return chapters, nil
}

// DeleteChapter 删除章节
func (s *Service) DeleteChapter(ctx context.Context, id int64) error {
	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return storageError(err, "failed to get chapter")
	}
	if chapter == nil {
		return apperrors.ErrChapterNotFound
	}
	if err := s.chapters.Delete(ctx, id); err != nil {
		return storageError(err, "failed to delete chapter")
	}
	return nil
}
