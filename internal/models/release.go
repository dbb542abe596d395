package models

// ReleaseDraft is a release to publish on the hosting service.
type ReleaseDraft struct {
	Tag   string
	Name  string
	Body  string
	Draft bool
}

// PublishedRelease describes a release after publishing.
type PublishedRelease struct {
	ID      int64  `json:"id"`
	Tag     string `json:"tag"`
	URL     string `json:"url"`
	Draft   bool   `json:"draft"`
	Updated bool   `json:"updated"`
}
