package mock

import (
	"context"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.BookService = (*BookService)(nil)

// BookService is a mock implementation of bookhaven.BookService.
type BookService struct {
	UpsertBooksFn  func(ctx context.Context, books []*bookhaven.Book) error
	FindBookByIDFn func(ctx context.Context, id string) (*bookhaven.Book, error)
	FindBooksFn    func(ctx context.Context, filter bookhaven.BookFilter) ([]*bookhaven.Book, error)
	DeleteBooksFn  func(ctx context.Context) error
	ReplaceBooksFn func(ctx context.Context, books []*bookhaven.Book) error
}

func (s *BookService) UpsertBooks(ctx context.Context, books []*bookhaven.Book) error {
	return s.UpsertBooksFn(ctx, books)
}

func (s *BookService) FindBookByID(ctx context.Context, id string) (*bookhaven.Book, error) {
	return s.FindBookByIDFn(ctx, id)
}

func (s *BookService) FindBooks(ctx context.Context, filter bookhaven.BookFilter) ([]*bookhaven.Book, error) {
	return s.FindBooksFn(ctx, filter)
}

func (s *BookService) DeleteBooks(ctx context.Context) error {
	return s.DeleteBooksFn(ctx)
}

func (s *BookService) ReplaceBooks(ctx context.Context, books []*bookhaven.Book) error {
	return s.ReplaceBooksFn(ctx, books)
}
