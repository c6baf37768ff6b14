package domain

import "time"

// Post is a blog article.
type Post struct {
	Meta
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     string        `json:"excerpt,omitempty"`
	Content     string        `json:"content"`
	CoverImage  string        `json:"cover_image,omitempty"`
	CategoryID  string        `json:"category_id,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Status      PublishStatus `json:"status"`
	AuthorID    string        `json:"author_id,omitempty"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}

// SlugValue implements Sluggable.
func (p *Post) SlugValue() string { return p.Slug }

// Publish moves the post to published, stamping the first publication time.
func (p *Post) Publish(now time.Time) {
	p.Status = StatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}
