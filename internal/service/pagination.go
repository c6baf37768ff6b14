package service

import "github.com/spec-kit/cms-admin/internal/repository"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into the accepted range.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// ListOptions converts the page request into store offsets.
func (p Pagination) ListOptions() repository.ListOptions {
	n := p.Normalize()
	return repository.ListOptions{Limit: n.PageSize, Offset: (n.Page - 1) * n.PageSize}
}

// ListResult is one page of documents plus the total match count.
type ListResult[T any] struct {
	Items    []*T
	Total    int
	Page     int
	PageSize int
}
