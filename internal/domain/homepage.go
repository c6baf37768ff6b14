package domain

// HomepageID is the fixed id of the homepage singleton.
const HomepageID = "homepage"

// Hero is the top banner of the homepage.
type Hero struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image,omitempty"`
	CTALabel string `json:"cta_label,omitempty"`
	CTAURL   string `json:"cta_url,omitempty"`
}

// HomepageSection is a free-form content block.
type HomepageSection struct {
	Type    string         `json:"type"`
	Title   string         `json:"title,omitempty"`
	Content map[string]any `json:"content,omitempty"`
}

// Homepage is the singleton homepage layout.
type Homepage struct {
	Meta
	Hero            Hero              `json:"hero"`
	FeaturedPostIDs []string          `json:"featured_post_ids,omitempty"`
	FeaturedAppIDs  []string          `json:"featured_app_ids,omitempty"`
	Sections        []HomepageSection `json:"sections,omitempty"`
}
