package domain

import (
	"encoding/json"
	"time"
)

// SourceCounts counts links per source.
type SourceCounts struct {
	Manual     int `json:"manual"`
	ORCID      int `json:"orcid"`
	OpenReview int `json:"openreview"`
}

func (s *SourceCounts) Add(src Source) {
	switch src {
	case SourceORCID:
		s.ORCID++
	case SourceOpenReview:
		s.OpenReview++
	default:
		s.Manual++
	}
}

// TagCount marshals as a [tag, count] pair.
type TagCount struct {
	Tag   string
	Count int
}

func (t TagCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.Tag, t.Count})
}

// TagStats is the /api/tags?action=stats payload.
type TagStats struct {
	TotalLinks  int          `json:"totalLinks"`
	TotalClicks int64        `json:"totalClicks"`
	Sources     SourceCounts `json:"sources"`
	TopTags     []TagCount   `json:"topTags"`
	UniqueTags  int          `json:"uniqueTags"`
}

type Activity struct {
	Slug         string    `json:"slug"`
	Clicks       int64     `json:"clicks"`
	LastAccessed time.Time `json:"lastAccessed"`
}

type Performer struct {
	Slug   string `json:"slug"`
	Clicks int64  `json:"clicks"`
	Title  string `json:"title,omitempty"`
}

// Stats is the analytics summary for a period.
type Stats struct {
	TotalLinks       int            `json:"totalLinks"`
	TotalClicks      int64          `json:"totalClicks"`
	Sources          SourceCounts   `json:"sources"`
	Tags             map[string]int `json:"tags"`
	RecentActivity   []Activity     `json:"recentActivity"`
	TopPerformers    []Performer    `json:"topPerformers"`
	Period           string         `json:"period"`
	AvgClicksPerLink float64        `json:"avgClicksPerLink"`
	UniqueTags       int            `json:"uniqueTags"`
	PeriodStart      time.Time      `json:"periodStart"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}
