package domain

import "time"

// SEO holds search metadata for a page.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Page is a standalone site page.
type Page struct {
	Meta
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Status      PublishStatus `json:"status"`
	SEO         SEO           `json:"seo"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

func (p *Page) SlugValue() string { return p.Slug }

// Publish moves the page to published, stamping the first publication time.
func (p *Page) Publish(now time.Time) {
	p.Status = StatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}
