package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/cms-admin/internal/domain"
)

// PostRequest is the writable part of a post.
type PostRequest struct {
	Title      string   `json:"title" validate:"required,max=300"`
	Slug       string   `json:"slug" validate:"required,max=200"`
	Excerpt    string   `json:"excerpt" validate:"max=1000"`
	Content    string   `json:"content"`
	CoverImage string   `json:"cover_image" validate:"max=2048"`
	CategoryID string   `json:"category_id"`
	Tags       []string `json:"tags" validate:"max=50,dive,max=64"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
}

// Apply copies the request onto p, leaving bookkeeping fields untouched.
func (r PostRequest) Apply(p *domain.Post) {
	p.Title = r.Title
	p.Slug = r.Slug
	p.Excerpt = r.Excerpt
	p.Content = r.Content
	p.CoverImage = r.CoverImage
	p.CategoryID = r.CategoryID
	p.Tags = r.Tags
	p.Status = domain.PublishStatus(r.Status)
}

// PageRequest is the writable part of a page.
type PageRequest struct {
	Title   string     `json:"title" validate:"required,max=300"`
	Slug    string     `json:"slug" validate:"required,max=200"`
	Content string     `json:"content"`
	Status  string     `json:"status" validate:"omitempty,oneof=draft published"`
	SEO     domain.SEO `json:"seo"`
}

// Apply copies the request onto p.
func (r PageRequest) Apply(p *domain.Page) {
	p.Title = r.Title
	p.Slug = r.Slug
	p.Content = r.Content
	p.Status = domain.PublishStatus(r.Status)
	p.SEO = r.SEO
}

// CategoryRequest is the writable part of a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// Apply copies the request onto c.
func (r CategoryRequest) Apply(c *domain.Category) {
	c.Name = r.Name
	c.Slug = r.Slug
	c.Description = r.Description
}

// AppRequest is the writable part of an app.
type AppRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	URL         string   `json:"url" validate:"omitempty,url"`
	Icon        string   `json:"icon" validate:"max=2048"`
	Platforms   []string `json:"platforms" validate:"max=20,dive,max=64"`
	Featured    bool     `json:"featured"`
}

// Apply copies the request onto a.
func (r AppRequest) Apply(a *domain.App) {
	a.Name = r.Name
	a.Slug = r.Slug
	a.Description = r.Description
	a.URL = r.URL
	a.Icon = r.Icon
	a.Platforms = r.Platforms
	a.Featured = r.Featured
}

// SitemapEntryRequest is the writable part of a sitemap entry.
type SitemapEntryRequest struct {
	Loc        string     `json:"loc" validate:"required,max=2048"`
	LastMod    *time.Time `json:"lastmod"`
	ChangeFreq string     `json:"changefreq" validate:"omitempty,oneof=always hourly daily weekly monthly yearly never"`
	Priority   *float64   `json:"priority" validate:"omitempty,min=0,max=1"`
}

// Apply copies the request onto e.
func (r SitemapEntryRequest) Apply(e *domain.SitemapEntry) {
	e.Loc = r.Loc
	e.LastMod = r.LastMod
	e.ChangeFreq = r.ChangeFreq
	e.Priority = r.Priority
}

// MediaUpdateRequest edits media metadata.
type MediaUpdateRequest struct {
	Alt string `json:"alt" validate:"max=500"`
}

// SettingRequest sets a setting value. Any JSON value is accepted.
type SettingRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

// HomepageRequest replaces the homepage layout.
type HomepageRequest struct {
	Hero            domain.Hero              `json:"hero"`
	FeaturedPostIDs []string                 `json:"featured_post_ids" validate:"max=50"`
	FeaturedAppIDs  []string                 `json:"featured_app_ids" validate:"max=50"`
	Sections        []domain.HomepageSection `json:"sections" validate:"max=50,dive"`
}

// Homepage converts the request into a document.
func (r HomepageRequest) Homepage() *domain.Homepage {
	return &domain.Homepage{
		Hero:            r.Hero,
		FeaturedPostIDs: r.FeaturedPostIDs,
		FeaturedAppIDs:  r.FeaturedAppIDs,
		Sections:        r.Sections,
	}
}

// Meta describes a page of list results.
type Meta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Data []*T `json:"data"`
	Meta Meta `json:"meta"`
}
