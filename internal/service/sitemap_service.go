package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapCacheKey  = "cms:sitemap.xml"
	sitemapGenKey    = "cms:sitemap.gen"
	sitemapDateFmt   = "2006-01-02"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapService renders sitemap.xml from manual entries and published content.
type SitemapService struct {
	entries repository.Store[domain.SitemapEntry]
	posts   repository.Store[domain.Post]
	pages   repository.Store[domain.Page]
	cache   *redis.Client
	ttl     time.Duration
	baseURL string
	logger  *zap.Logger
}

// SitemapDependencies bundles the stores and cache the sitemap reads from.
type SitemapDependencies struct {
	Entries repository.Store[domain.SitemapEntry]
	Posts   repository.Store[domain.Post]
	Pages   repository.Store[domain.Page]
	// Cache is optional; without it every request renders.
	Cache    *redis.Client
	CacheTTL time.Duration
	BaseURL  string
	Logger   *zap.Logger
}

// NewSitemapService builds the service.
func NewSitemapService(deps SitemapDependencies) *SitemapService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SitemapService{
		entries: deps.Entries,
		posts:   deps.Posts,
		pages:   deps.Pages,
		cache:   deps.Cache,
		ttl:     deps.CacheTTL,
		baseURL: strings.TrimRight(deps.BaseURL, "/"),
		logger:  logger,
	}
}

// XML returns the rendered sitemap, served from cache when present. Cached
// bodies are keyed by the cache generation, so a render that overlaps an
// Invalidate is stored under a generation no reader asks for.
func (s *SitemapService) XML(ctx context.Context) ([]byte, error) {
	var key string
	if s.cache != nil {
		var err error
		if key, err = s.cacheKey(ctx); err != nil {
			s.logger.Warn("sitemap cache generation read failed", zap.Error(err))
		}
	}
	if key != "" {
		cached, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("sitemap cache read failed", zap.Error(err))
		}
	}

	body, err := s.Render(ctx)
	if err != nil {
		return nil, err
	}
	if key != "" && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, body, s.ttl).Err(); err != nil {
			s.logger.Warn("sitemap cache write failed", zap.Error(err))
		}
	}
	return body, nil
}

func (s *SitemapService) cacheKey(ctx context.Context) (string, error) {
	gen, err := s.cache.Get(ctx, sitemapGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return generationKey(gen), nil
}

func generationKey(gen int64) string {
	return sitemapCacheKey + ":" + strconv.FormatInt(gen, 10)
}

// Render builds the sitemap document without consulting the cache.
func (s *SitemapService) Render(ctx context.Context) ([]byte, error) {
	set := urlSet{Xmlns: sitemapNamespace}
	seen := map[string]bool{}
	add := func(u sitemapURL) {
		if seen[u.Loc] {
			return
		}
		seen[u.Loc] = true
		set.URLs = append(set.URLs, u)
	}

	entries, err := repository.FindAll(ctx, s.entries, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load sitemap entries: %w", err))
	}
	for _, e := range entries {
		u := sitemapURL{Loc: s.absolute(e.Loc), ChangeFreq: e.ChangeFreq}
		if e.LastMod != nil {
			u.LastMod = e.LastMod.UTC().Format(sitemapDateFmt)
		}
		if e.Priority != nil {
			u.Priority = strconv.FormatFloat(*e.Priority, 'f', 1, 64)
		}
		add(u)
	}

	published := repository.Filter{"status": domain.StatusPublished}
	posts, err := repository.FindAll(ctx, s.posts, published)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load posts: %w", err))
	}
	for _, p := range posts {
		add(sitemapURL{Loc: s.absolute("/blog/" + p.Slug), LastMod: p.UpdatedAt.UTC().Format(sitemapDateFmt)})
	}

	pages, err := repository.FindAll(ctx, s.pages, published)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load pages: %w", err))
	}
	for _, p := range pages {
		add(sitemapURL{Loc: s.absolute("/" + p.Slug), LastMod: p.UpdatedAt.UTC().Format(sitemapDateFmt)})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("encode sitemap: %w", err))
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Invalidate moves the cache to a new generation and drops the previous body.
func (s *SitemapService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	gen, err := s.cache.Incr(ctx, sitemapGenKey).Result()
	if err != nil {
		return fmt.Errorf("bump sitemap generation: %w", err)
	}
	return s.cache.Del(ctx, generationKey(gen-1)).Err()
}

// HandleContentEvent invalidates the cache when content that appears in the
// sitemap changes.
func (s *SitemapService) HandleContentEvent(ctx context.Context, event events.Event) error {
	switch event.Collection {
	case domain.CollectionPosts, domain.CollectionPages, domain.CollectionSitemapEntries:
		return s.Invalidate(ctx)
	default:
		return nil
	}
}

func (s *SitemapService) absolute(loc string) string {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return loc
	}
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	return s.baseURL + loc
}
