package domain

import "time"

// ChangeFreq values accepted by sitemaps.org.
var ChangeFreqs = []string{"always", "hourly", "daily", "weekly", "monthly", "yearly", "never"}

// SitemapEntry is a manually managed sitemap URL.
type SitemapEntry struct {
	Meta
	Loc        string     `json:"loc"`
	LastMod    *time.Time `json:"lastmod,omitempty"`
	ChangeFreq string     `json:"changefreq,omitempty"`
	Priority   *float64   `json:"priority,omitempty"`
}
