package domain

import "time"

// Collection names used by the document store.
const (
	CollectionUsers          = "users"
	CollectionPosts          = "posts"
	CollectionPages          = "pages"
	CollectionCategories     = "categories"
	CollectionApps           = "apps"
	CollectionMedia          = "media"
	CollectionSettings       = "settings"
	CollectionSitemapEntries = "sitemapentries"
	CollectionHomepage       = "homepage"
)

// Meta carries the bookkeeping fields every stored document has.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata exposes the embedded Meta for the document store.
func (m *Meta) Metadata() *Meta {
	return m
}

// Document is implemented by every type persisted in a collection.
type Document interface {
	Metadata() *Meta
}

// Sluggable documents have a collection-unique slug.
type Sluggable interface {
	Document
	SlugValue() string
}

// PublishStatus is the editorial state of posts and pages.
type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusPublished PublishStatus = "published"
)

// Valid reports whether the status is one of the known states.
func (s PublishStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished:
		return true
	default:
		return false
	}
}
