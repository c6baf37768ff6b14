package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// ContentService implements the CRUD flow shared by every document collection:
// validation hook, slug uniqueness for domain.Sluggable documents and change
// events.
type ContentService[T any, PT interface {
	*T
	domain.Document
}] struct {
	store      repository.Store[T]
	dispatcher events.Dispatcher
	logger     *zap.Logger
	resource   string
	prepare    func(doc PT, now time.Time) error
	now        func() time.Time
}

// ContentOption customizes a ContentService.
type ContentOption[T any, PT interface {
	*T
	domain.Document
}] func(*ContentService[T, PT])

// WithPrepare registers a hook that validates and normalizes a document before
// every write.
func WithPrepare[T any, PT interface {
	*T
	domain.Document
}](prepare func(doc PT, now time.Time) error) ContentOption[T, PT] {
	return func(s *ContentService[T, PT]) { s.prepare = prepare }
}

// NewContentService builds a service over store. resource names the document
// kind in error messages.
func NewContentService[T any, PT interface {
	*T
	domain.Document
}](store repository.Store[T], dispatcher events.Dispatcher, logger *zap.Logger, resource string, opts ...ContentOption[T, PT]) *ContentService[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ContentService[T, PT]{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		resource:   resource,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of documents matching filter.
func (s *ContentService[T, PT]) List(ctx context.Context, filter repository.Filter, page Pagination) (ListResult[T], error) {
	page = page.Normalize()
	items, err := s.store.Find(ctx, filter, page.ListOptions())
	if err != nil {
		return ListResult[T]{}, apperrors.NewInternalError(err)
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return ListResult[T]{}, apperrors.NewInternalError(err)
	}
	if items == nil {
		items = []*T{}
	}
	return ListResult[T]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// Get fetches a document by id.
func (s *ContentService[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapLookup(err, map[string]any{"id": id})
	}
	return doc, nil
}

// FindOne fetches the oldest document matching filter.
func (s *ContentService[T, PT]) FindOne(ctx context.Context, filter repository.Filter) (*T, error) {
	doc, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return nil, s.mapLookup(err, nil)
	}
	return doc, nil
}

// Create validates and stores a new document.
func (s *ContentService[T, PT]) Create(ctx context.Context, actorID string, doc *T) error {
	pt := PT(doc)
	if err := s.beforeWrite(ctx, pt, ""); err != nil {
		return err
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventContentCreated, pt.Metadata().ID, actorID)
	return nil
}

// Update replaces an existing document. The document's id must be set.
func (s *ContentService[T, PT]) Update(ctx context.Context, actorID string, doc *T) error {
	pt := PT(doc)
	id := pt.Metadata().ID
	if err := s.beforeWrite(ctx, pt, id); err != nil {
		return err
	}
	if err := s.store.Update(ctx, doc); err != nil {
		return s.mapLookup(err, map[string]any{"id": id})
	}
	s.publish(ctx, events.EventContentUpdated, id, actorID)
	return nil
}

// Delete removes a document by id.
func (s *ContentService[T, PT]) Delete(ctx context.Context, actorID, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.mapLookup(err, map[string]any{"id": id})
	}
	s.publish(ctx, events.EventContentDeleted, id, actorID)
	return nil
}

func (s *ContentService[T, PT]) beforeWrite(ctx context.Context, doc PT, selfID string) error {
	if s.prepare != nil {
		if err := s.prepare(doc, s.now().UTC()); err != nil {
			return err
		}
	}
	sluggable, ok := any(doc).(domain.Sluggable)
	if !ok {
		return nil
	}
	slug := sluggable.SlugValue()
	if !ValidSlug(slug) {
		return apperrors.NewValidationError("invalid slug", map[string]any{"slug": slug})
	}
	existing, err := s.store.FindOne(ctx, repository.Filter{"slug": slug})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return apperrors.NewInternalError(err)
	case PT(existing).Metadata().ID != selfID:
		return apperrors.NewConflict(s.resource+" slug already in use", map[string]any{"slug": slug})
	}
	return nil
}

func (s *ContentService[T, PT]) mapLookup(err error, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(s.resource, details)
	}
	return apperrors.NewInternalError(err)
}

func (s *ContentService[T, PT]) publish(ctx context.Context, eventType events.EventType, id, actorID string) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewContentEvent(eventType, s.store.Name(), id, actorID)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("content event handler failed",
			zap.String("collection", event.Collection),
			zap.String("document_id", id),
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
}
