package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

var allowedMediaPrefixes = []string{"image/", "video/", "audio/", "application/pdf"}

// Upload describes an incoming media file.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Alt          string
	Body         io.Reader
}

// MediaService stores uploaded files on disk and their metadata in the media
// collection.
type MediaService struct {
	docs      *ContentService[domain.Media, *domain.Media]
	dir       string
	urlPrefix string
	maxSize   int64
	logger    *zap.Logger
}

// MediaOptions configures where files are written and how they are addressed.
type MediaOptions struct {
	Dir       string
	URLPrefix string
	MaxSize   int64
}

// NewMediaService builds the service.
func NewMediaService(store repository.Store[domain.Media], dispatcher events.Dispatcher, logger *zap.Logger, opts MediaOptions) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{
		docs:      NewContentService[domain.Media](store, dispatcher, logger, "media"),
		dir:       opts.Dir,
		urlPrefix: strings.TrimRight(opts.URLPrefix, "/"),
		maxSize:   opts.MaxSize,
		logger:    logger,
	}
}

// List returns one page of media documents.
func (s *MediaService) List(ctx context.Context, filter repository.Filter, page Pagination) (ListResult[domain.Media], error) {
	return s.docs.List(ctx, filter, page)
}

// Get returns a media document.
func (s *MediaService) Get(ctx context.Context, id string) (*domain.Media, error) {
	return s.docs.Get(ctx, id)
}

// Upload writes the file under a generated name and records it.
func (s *MediaService) Upload(ctx context.Context, actorID string, in Upload) (*domain.Media, error) {
	if in.Body == nil || in.Size == 0 {
		return nil, apperrors.NewValidationError("file is required", map[string]any{"field": "file"})
	}
	if s.maxSize > 0 && in.Size > s.maxSize {
		return nil, apperrors.NewValidationError("file too large", map[string]any{"max_bytes": s.maxSize})
	}
	if !allowedMediaType(in.MimeType) {
		return nil, apperrors.NewValidationError("unsupported media type", map[string]any{"mime_type": in.MimeType})
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(in.OriginalName))
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create media dir: %w", err))
	}
	target := filepath.Join(s.dir, filename)
	written, err := writeFile(target, in.Body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	media := &domain.Media{
		Filename:     filename,
		OriginalName: filepath.Base(in.OriginalName),
		URL:          path.Join(s.urlPrefix, filename),
		MimeType:     in.MimeType,
		Size:         written,
		Alt:          in.Alt,
		UploadedBy:   actorID,
	}
	if err := s.docs.Create(ctx, actorID, media); err != nil {
		s.removeFile(filename)
		return nil, err
	}
	return media, nil
}

// UpdateAlt changes the alt text of a media document.
func (s *MediaService) UpdateAlt(ctx context.Context, actorID, id, alt string) (*domain.Media, error) {
	media, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	media.Alt = alt
	if err := s.docs.Update(ctx, actorID, media); err != nil {
		return nil, err
	}
	return media, nil
}

// Delete removes the document and its file.
func (s *MediaService) Delete(ctx context.Context, actorID, id string) error {
	media, err := s.docs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, actorID, id); err != nil {
		return err
	}
	s.removeFile(media.Filename)
	return nil
}

func (s *MediaService) removeFile(filename string) {
	if filename == "" || filename != filepath.Base(filename) {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove media file failed", zap.String("filename", filename), zap.Error(err))
	}
}

func writeFile(target string, body io.Reader) (int64, error) {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create media file: %w", err)
	}
	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return 0, fmt.Errorf("write media file: %w", err)
	}
	return n, nil
}

func allowedMediaType(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	for _, prefix := range allowedMediaPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
