package domain

// App is a showcased application.
type App struct {
	Meta
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Featured    bool     `json:"featured"`
}

func (a *App) SlugValue() string { return a.Slug }
