package domain

import "time"

// LinkInput is a create/upsert payload.
type LinkInput struct {
	Slug        string   `json:"slug"`
	Target      string   `json:"target"`
	Permanent   bool     `json:"permanent"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	GithubRepo  string   `json:"githubRepo"`
}

// CreateResult reports the outcome of one item in a bulk create.
type CreateResult struct {
	Slug        string   `json:"slug"`
	Short       string   `json:"short,omitempty"`
	Target      string   `json:"target,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// UpdateResult reports the outcome of one item in a bulk update.
type UpdateResult struct {
	Slug     string    `json:"slug"`
	Updated  bool      `json:"updated"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// KeysDeleted counts the keys removed for one slug.
type KeysDeleted struct {
	Link  int64 `json:"link"`
	Count int64 `json:"count"`
	Meta  int64 `json:"meta"`
}

// DeleteResult reports the outcome of deleting one slug.
type DeleteResult struct {
	Key         string      `json:"key"`
	Existed     bool        `json:"existed"`
	KeysDeleted KeysDeleted `json:"keysDeleted"`
	Error       string      `json:"error,omitempty"`
}

// ExternalWork is a normalized record from an external source before it is
// cached as a link.
type ExternalWork struct {
	Slug        string
	Target      string
	Title       string
	Description string
	Venue       string
	Tags        []string
	Date        time.Time
	StartDate   string
}

// DirectoryEntry is the public view of a link.
type DirectoryEntry struct {
	Slug        string     `json:"slug"`
	Target      string     `json:"target"`
	ShortURL    string     `json:"shortUrl"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Tags        []string   `json:"tags"`
	Source      Source     `json:"source"`
	Clicks      int64      `json:"clicks"`
	CreatedAt   *time.Time `json:"createdAt"`
	StartDate   string     `json:"startDate,omitempty"`
	EndDate     string     `json:"endDate,omitempty"`
	GithubRepo  string     `json:"githubRepo,omitempty"`
}

// NewDirectoryEntry builds the public view of l.
func NewDirectoryEntry(l Link) DirectoryEntry {
	return DirectoryEntry{
		Slug:        l.Slug,
		Target:      l.Target,
		ShortURL:    "/" + l.Slug,
		Title:       Nullable(l.Metadata.Title),
		Description: Nullable(l.Metadata.Description),
		Tags:        l.Metadata.Tags,
		Source:      l.Source(),
		Clicks:      l.Clicks,
		CreatedAt:   l.Metadata.CreatedAt,
		StartDate:   l.Metadata.StartDate,
		EndDate:     l.Metadata.EndDate,
		GithubRepo:  l.Metadata.GithubRepo,
	}
}

// Nullable returns nil for the empty string.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
