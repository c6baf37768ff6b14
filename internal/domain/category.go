package domain

// Category groups posts.
type Category struct {
	Meta
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

func (c *Category) SlugValue() string { return c.Slug }
