package repository

import (
	"context"

	"github.com/spec-kit/cms-admin/internal/domain"
)

// Store is the document access contract services depend on.
type Store[T any] interface {
	Name() string
	Insert(ctx context.Context, doc *T) error
	Get(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	Find(ctx context.Context, filter Filter, opts ListOptions) ([]*T, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Update(ctx context.Context, doc *T) error
	Upsert(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id string) error
}

// Stores bundles every collection the CMS uses.
type Stores struct {
	Users          UserRepository
	Posts          Store[domain.Post]
	Pages          Store[domain.Page]
	Categories     Store[domain.Category]
	Apps           Store[domain.App]
	Media          Store[domain.Media]
	Settings       Store[domain.Setting]
	SitemapEntries Store[domain.SitemapEntry]
	Homepage       Store[domain.Homepage]
}

// NewStores binds all collections to the shared documents table.
func NewStores(db DBTX) Stores {
	return Stores{
		Users:          NewUserRepository(NewCollection[domain.User](db, domain.CollectionUsers)),
		Posts:          NewCollection[domain.Post](db, domain.CollectionPosts),
		Pages:          NewCollection[domain.Page](db, domain.CollectionPages),
		Categories:     NewCollection[domain.Category](db, domain.CollectionCategories),
		Apps:           NewCollection[domain.App](db, domain.CollectionApps),
		Media:          NewCollection[domain.Media](db, domain.CollectionMedia),
		Settings:       NewCollection[domain.Setting](db, domain.CollectionSettings),
		SitemapEntries: NewCollection[domain.SitemapEntry](db, domain.CollectionSitemapEntries),
		Homepage:       NewCollection[domain.Homepage](db, domain.CollectionHomepage),
	}
}

// ScanBatchSize is the page size FindAll reads with.
const ScanBatchSize = 500

// FindAll pages through every document matching filter, newest first.
func FindAll[T any](ctx context.Context, store Store[T], filter Filter) ([]*T, error) {
	var all []*T
	for offset := 0; ; offset += ScanBatchSize {
		batch, err := store.Find(ctx, filter, ListOptions{Limit: ScanBatchSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < ScanBatchSize {
			return all, nil
		}
	}
}
