package domain

import "time"

// ExportEntry is one flattened row of an export. The json and yaml tags use
// the same names as the CSV header.
type ExportEntry struct {
	Slug        string `json:"slug" yaml:"slug"`
	Target      string `json:"target" yaml:"target"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Tags        string `json:"tags" yaml:"tags"`
	Source      Source `json:"source" yaml:"source"`
	Clicks      int64  `json:"clicks" yaml:"clicks"`
	Permanent   bool   `json:"permanent" yaml:"permanent"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	GithubRepo  string `json:"githubRepo" yaml:"githubRepo"`
}

// ExportColumns is the CSV header order.
var ExportColumns = []string{
	"slug", "target", "title", "description", "tags", "source",
	"clicks", "permanent", "createdAt", "startDate", "endDate", "githubRepo",
}

type ExportMetadata struct {
	Total       int       `json:"total" yaml:"total"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Format      string    `json:"format" yaml:"format"`
	Source      string    `json:"source" yaml:"source"`
}

type Export struct {
	Export   []ExportEntry  `json:"export" yaml:"export"`
	Metadata ExportMetadata `json:"metadata" yaml:"metadata"`
}

// ExportEntryFromLink flattens a link.
func ExportEntryFromLink(l Link) ExportEntry {
	e := ExportEntry{
		Slug:        l.Slug,
		Target:      l.Target,
		Title:       l.Metadata.Title,
		Description: l.Metadata.Description,
		Tags:        JoinTags(l.Metadata.Tags),
		Source:      l.Source(),
		Clicks:      l.Clicks,
		Permanent:   l.Metadata.Permanent,
		StartDate:   l.Metadata.StartDate,
		EndDate:     l.Metadata.EndDate,
		GithubRepo:  l.Metadata.GithubRepo,
	}
	if l.Metadata.CreatedAt != nil {
		e.CreatedAt = l.Metadata.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return e
}

// ToLink rebuilds a link from an export row. Clicks are not restored.
func (e ExportEntry) ToLink() Link {
	return Link{
		Slug:   e.Slug,
		Target: e.Target,
		Metadata: Metadata{
			Title:       e.Title,
			Description: e.Description,
			Tags:        SplitTags(e.Tags),
			Permanent:   e.Permanent,
			CreatedAt:   parseTime(e.CreatedAt),
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			GithubRepo:  e.GithubRepo,
		},
	}
}
