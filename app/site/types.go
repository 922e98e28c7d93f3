package site

type Config struct {
	Languages        []string   `yaml:"languages"`
	ReleaseLanguages []string   `yaml:"release_languages"`
	BaseURL          string     `yaml:"base_url"`
	Feed             FeedConfig `yaml:"feed"`
}

type FeedConfig struct {
	Section     string `yaml:"section"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	SelfLink    string `yaml:"self_link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
}

// Language is a configured translation with its English display name.
type Language struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Release bool   `json:"release"`
}
