package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
)

const (
	topTagsLimit     = 20
	suggestionsLimit = 10
)

type TagService struct {
	repo ports.LinkRepository
	now  func() time.Time
}

func NewTagService(repo ports.LinkRepository) *TagService {
	return &TagService{repo: repo, now: time.Now}
}

func (s *TagService) Stats(ctx context.Context) (*domain.TagStats, error) {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.TagStats{TopTags: []domain.TagCount{}}
	counts := tagHistogram(links)
	for _, l := range links {
		stats.TotalLinks++
		stats.TotalClicks += l.Clicks
		stats.Sources.Add(l.Source())
	}

	for tag, n := range counts {
		stats.TopTags = append(stats.TopTags, domain.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > topTagsLimit {
		stats.TopTags = stats.TopTags[:topTagsLimit]
	}
	stats.UniqueTags = len(counts)
	return stats, nil
}

func tagHistogram(links []domain.Link) map[string]int {
	counts := map[string]int{}
	for _, l := range links {
		for _, t := range l.Metadata.Tags {
			counts[t]++
		}
	}
	return counts
}

// Suggest returns up to ten distinct tags starting with prefix, case-insensitively.
func (s *TagService) Suggest(ctx context.Context, prefix string) ([]string, error) {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}

	prefix = strings.ToLower(prefix)
	seen := map[string]struct{}{}
	suggestions := []string{}
	for _, l := range links {
		for _, t := range l.Metadata.Tags {
			if _, ok := seen[t]; ok || !strings.HasPrefix(strings.ToLower(t), prefix) {
				continue
			}
			seen[t] = struct{}{}
			suggestions = append(suggestions, t)
		}
	}
	sort.Strings(suggestions)
	if len(suggestions) > suggestionsLimit {
		suggestions = suggestions[:suggestionsLimit]
	}
	return suggestions, nil
}

// Add unions tags into each slug's metadata. Slugs without metadata are skipped.
func (s *TagService) Add(ctx context.Context, slugs, tags []string) (int, error) {
	if len(slugs) == 0 || len(tags) == 0 {
		return 0, fmt.Errorf("%w: slugs (array) and tags (array) required", domain.ErrValidation)
	}
	return s.updateSlugs(ctx, slugs, func(existing []string) []string {
		return domain.UnionTags(existing, tags)
	})
}

func (s *TagService) Remove(ctx context.Context, slugs, tags []string) (int, error) {
	if len(slugs) == 0 || len(tags) == 0 {
		return 0, fmt.Errorf("%w: slugs (array) and tags (array) required", domain.ErrValidation)
	}
	drop := toSet(tags)
	return s.updateSlugs(ctx, slugs, func(existing []string) []string {
		return filterTags(existing, func(t string) bool {
			_, ok := drop[t]
			return !ok
		})
	})
}

func (s *TagService) Rename(ctx context.Context, oldTag, newTag string) (int, error) {
	oldTag, newTag = strings.TrimSpace(oldTag), strings.TrimSpace(newTag)
	if oldTag == "" || newTag == "" {
		return 0, fmt.Errorf("%w: oldTag and newTag required", domain.ErrValidation)
	}
	return s.updateAll(ctx, func(existing []string) []string {
		renamed := make([]string, len(existing))
		for i, t := range existing {
			if t == oldTag {
				t = newTag
			}
			renamed[i] = t
		}
		return domain.UnionTags(nil, renamed)
	})
}

func (s *TagService) DeleteTag(ctx context.Context, tag string) (int, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0, fmt.Errorf("%w: tag required", domain.ErrValidation)
	}
	return s.updateAll(ctx, func(existing []string) []string {
		return filterTags(existing, func(t string) bool { return t != tag })
	})
}

func (s *TagService) updateSlugs(ctx context.Context, slugs []string, edit func([]string) []string) (int, error) {
	updated := 0
	for _, raw := range slugs {
		slug := domain.NormalizeSlug(raw)
		meta, err := s.repo.GetMeta(ctx, slug)
		if err != nil {
			return updated, err
		}
		if meta == nil {
			continue
		}
		changed, err := s.apply(ctx, slug, meta, edit)
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

func (s *TagService) updateAll(ctx context.Context, edit func([]string) []string) (int, error) {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, l := range links {
		meta := l.Metadata
		changed, err := s.apply(ctx, l.Slug, &meta, edit)
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

func (s *TagService) apply(ctx context.Context, slug string, meta *domain.Metadata, edit func([]string) []string) (bool, error) {
	next := edit(meta.Tags)
	if slices.Equal(meta.Tags, next) {
		return false, nil
	}
	meta.Tags = next
	now := s.now().UTC()
	meta.UpdatedAt = &now
	if err := s.repo.SaveMeta(ctx, slug, *meta); err != nil {
		return false, fmt.Errorf("save tags %s: %w", slug, err)
	}
	return true, nil
}

func filterTags(tags []string, keep func(string) bool) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.TrimSpace(it)] = struct{}{}
	}
	return set
}
