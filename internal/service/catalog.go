package service

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether slug is lowercase words joined by single hyphens.
func ValidSlug(slug string) bool {
	return len(slug) <= 200 && slugPattern.MatchString(slug)
}

type (
	PostService     = ContentService[domain.Post, *domain.Post]
	PageService     = ContentService[domain.Page, *domain.Page]
	CategoryService = ContentService[domain.Category, *domain.Category]
	AppService      = ContentService[domain.App, *domain.App]
	SitemapEntries  = ContentService[domain.SitemapEntry, *domain.SitemapEntry]
)

// Catalog groups the content services backed by plain document collections.
type Catalog struct {
	Posts          *PostService
	Pages          *PageService
	Categories     *CategoryService
	Apps           *AppService
	SitemapEntries *SitemapEntries
}

// NewCatalog wires the content services to their stores.
func NewCatalog(stores repository.Stores, dispatcher events.Dispatcher, logger *zap.Logger) *Catalog {
	return &Catalog{
		Posts: NewContentService[domain.Post](stores.Posts, dispatcher, logger, "post",
			WithPrepare(preparePost),
		),
		Pages: NewContentService[domain.Page](stores.Pages, dispatcher, logger, "page",
			WithPrepare(preparePage),
		),
		Categories: NewContentService[domain.Category](stores.Categories, dispatcher, logger, "category",
			WithPrepare(func(c *domain.Category, _ time.Time) error {
				return requireField("name", c.Name)
			}),
		),
		Apps: NewContentService[domain.App](stores.Apps, dispatcher, logger, "app",
			WithPrepare(func(a *domain.App, _ time.Time) error {
				return requireField("name", a.Name)
			}),
		),
		SitemapEntries: NewContentService[domain.SitemapEntry](stores.SitemapEntries, dispatcher, logger, "sitemap entry",
			WithPrepare(prepareSitemapEntry),
		),
	}
}

func preparePost(p *domain.Post, now time.Time) error {
	if err := requireField("title", p.Title); err != nil {
		return err
	}
	status, err := normalizeStatus(p.Status)
	if err != nil {
		return err
	}
	p.Status = status
	if status == domain.StatusPublished {
		p.Publish(now)
	}
	return nil
}

func preparePage(p *domain.Page, now time.Time) error {
	if err := requireField("title", p.Title); err != nil {
		return err
	}
	status, err := normalizeStatus(p.Status)
	if err != nil {
		return err
	}
	p.Status = status
	if status == domain.StatusPublished {
		p.Publish(now)
	}
	return nil
}

func prepareSitemapEntry(e *domain.SitemapEntry, _ time.Time) error {
	if err := requireField("loc", e.Loc); err != nil {
		return err
	}
	if e.ChangeFreq != "" && !slices.Contains(domain.ChangeFreqs, e.ChangeFreq) {
		return apperrors.NewValidationError("invalid changefreq", map[string]any{"allowed": domain.ChangeFreqs})
	}
	if e.Priority != nil && (*e.Priority < 0 || *e.Priority > 1) {
		return apperrors.NewValidationError("priority must be between 0 and 1", nil)
	}
	return nil
}

func normalizeStatus(status domain.PublishStatus) (domain.PublishStatus, error) {
	if status == "" {
		return domain.StatusDraft, nil
	}
	if !status.Valid() {
		return "", apperrors.NewValidationError("invalid status", map[string]any{
			"allowed": []domain.PublishStatus{domain.StatusDraft, domain.StatusPublished},
		})
	}
	return status, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(name+" is required", map[string]any{"field": name})
	}
	return nil
}
