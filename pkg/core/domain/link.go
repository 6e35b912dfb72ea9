package domain

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Source identifies where a link came from. It is derived from the slug prefix.
type Source string

const (
	SourceManual     Source = "manual"
	SourceORCID      Source = "orcid"
	SourceOpenReview Source = "openreview"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9_-]+$`)
	targetPattern = regexp.MustCompile(`(?i)^https?://`)
)

// Link is a slug → target mapping together with its metadata and click count
type Link struct {
	Slug     string   `json:"slug"`
	Target   string   `json:"target"`
	Clicks   int64    `json:"clicks"`
	Metadata Metadata `json:"metadata"`
}

// Metadata holds the descriptive fields attached to a link.
type Metadata struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags"`
	Permanent   bool       `json:"permanent"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	StartDate   string     `json:"startDate,omitempty"`
	EndDate     string     `json:"endDate,omitempty"`
	GithubRepo  string     `json:"githubRepo,omitempty"`
}

// Source reports the link's origin.
func (l *Link) Source() Source {
	return SourceOf(l.Slug)
}

// NormalizeSlug trims whitespace, strips a leading slash and lowercases.
func NormalizeSlug(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "/")
	return strings.ToLower(s)
}

// ValidateSlug reports whether an already-normalized slug is acceptable.
func ValidateSlug(slug string) error {
	if slug == "" || !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// ValidateTarget accepts only absolute http(s) URLs with a host.
func ValidateTarget(target string) error {
	if !targetPattern.MatchString(target) {
		return ErrInvalidTarget
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return ErrInvalidTarget
	}
	return nil
}

// SourceOf derives the source from a slug prefix.
func SourceOf(slug string) Source {
	switch {
	case strings.HasPrefix(slug, "orcid-"):
		return SourceORCID
	case strings.HasPrefix(slug, "openreview-"):
		return SourceOpenReview
	default:
		return SourceManual
	}
}

// ParseSource maps a query value to a Source. Unknown values return false.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceManual, SourceORCID, SourceOpenReview:
		return Source(s), true
	}
	return "", false
}

// SplitTags splits a comma-joined tag string, trimming and dropping empties.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// UnionTags returns existing followed by any new tags not already present.
// Comparison is case-sensitive.
func UnionTags(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// HasTag reports an exact tag match.
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
