package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

var settingKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)

// SettingsService manages key/value site settings and the homepage singleton.
type SettingsService struct {
	settings   repository.Store[domain.Setting]
	homepage   repository.Store[domain.Homepage]
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSettingsService builds the service.
func NewSettingsService(settings repository.Store[domain.Setting], homepage repository.Store[domain.Homepage], dispatcher events.Dispatcher, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{settings: settings, homepage: homepage, dispatcher: dispatcher, logger: logger}
}

// All returns every setting as a key to value map.
func (s *SettingsService) All(ctx context.Context) (map[string]json.RawMessage, error) {
	docs, err := repository.FindAll(ctx, s.settings, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	out := make(map[string]json.RawMessage, len(docs))
	for _, d := range docs {
		out[d.Key] = d.Value
	}
	return out, nil
}

// Get returns one setting.
func (s *SettingsService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	if !settingKeyPattern.MatchString(key) {
		return nil, apperrors.NewValidationError("invalid setting key", map[string]any{"key": key})
	}
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("setting", map[string]any{"key": key})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return setting, nil
}

// Put creates or replaces a setting. value must be valid JSON.
func (s *SettingsService) Put(ctx context.Context, actorID, key string, value json.RawMessage) (*domain.Setting, error) {
	if !settingKeyPattern.MatchString(key) {
		return nil, apperrors.NewValidationError("invalid setting key", map[string]any{"key": key})
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, apperrors.NewValidationError("value must be valid JSON", map[string]any{"key": key})
	}
	setting := &domain.Setting{Meta: domain.Meta{ID: key}, Key: key, Value: value}
	if existing, err := s.settings.Get(ctx, key); err == nil {
		setting.CreatedAt = existing.CreatedAt
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, domain.CollectionSettings, key, actorID)
	return setting, nil
}

// Homepage returns the homepage layout, or an empty layout if none was saved.
func (s *SettingsService) Homepage(ctx context.Context) (*domain.Homepage, error) {
	page, err := s.homepage.Get(ctx, domain.HomepageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.Homepage{Meta: domain.Meta{ID: domain.HomepageID}}, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return page, nil
}

// PutHomepage replaces the homepage layout.
func (s *SettingsService) PutHomepage(ctx context.Context, actorID string, page *domain.Homepage) (*domain.Homepage, error) {
	for i, section := range page.Sections {
		if section.Type == "" {
			return nil, apperrors.NewValidationError("section type is required", map[string]any{"index": i})
		}
	}
	current, err := s.Homepage(ctx)
	if err != nil {
		return nil, err
	}
	page.Meta = domain.Meta{ID: domain.HomepageID, CreatedAt: current.CreatedAt}
	if err := s.homepage.Upsert(ctx, page); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, domain.CollectionHomepage, domain.HomepageID, actorID)
	return page, nil
}

func (s *SettingsService) publish(ctx context.Context, collection, id, actorID string) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.NewContentEvent(events.EventContentUpdated, collection, id, actorID)); err != nil {
		s.logger.Warn("content event handler failed", zap.String("collection", collection), zap.Error(err))
	}
}
