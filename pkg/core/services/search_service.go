package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Relevance weights.
const (
	scoreTitle       = 10
	scoreTitlePrefix = 5
	scoreDescription = 5
	scoreTag         = 3
)

type SearchService struct {
	repo ports.LinkRepository
}

func NewSearchService(repo ports.LinkRepository) *SearchService {
	return &SearchService{repo: repo}
}

func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	if q.Query == "" && q.Tag == "" && q.Source == "" {
		return nil, fmt.Errorf("%w: at least one search parameter required: q (query), tag, or source", domain.ErrValidation)
	}
	limit := clampLimit(q.Limit, defaultSearchLimit, maxSearchLimit)
	offset := max(q.Offset, 0)

	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	sortBySlug(links)

	var highlight *regexp.Regexp
	if q.Query != "" {
		highlight = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(q.Query))
	}

	results := make([]domain.SearchResult, 0, len(links))
	for _, l := range links {
		src := l.Source()
		if q.Source != "" && string(src) != q.Source {
			continue
		}
		if q.Tag != "" && !l.Metadata.HasTag(q.Tag) {
			continue
		}

		score := 1
		if q.Query != "" {
			score = Relevance(q.Query, l.Metadata.Title, l.Metadata.Description, l.Metadata.Tags)
			if score == 0 {
				continue
			}
		}

		results = append(results, domain.SearchResult{
			Slug:        l.Slug,
			Target:      l.Target,
			Title:       domain.Nullable(l.Metadata.Title),
			Description: domain.Nullable(l.Metadata.Description),
			Tags:        l.Metadata.Tags,
			Source:      src,
			Score:       score,
			Highlights:  highlights(highlight, q.Query, l.Metadata),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	return &domain.SearchResponse{
		Query:      domain.Nullable(q.Query),
		Filters:    map[string]string{"tag": q.Tag, "source": q.Source},
		Results:    domain.Page(results, limit, offset),
		Pagination: domain.NewPagination(len(results), limit, offset),
	}, nil
}

// Relevance scores a case-insensitive substring match of query.
func Relevance(query, title, description string, tags []string) int {
	q := strings.ToLower(query)
	score := 0

	t := strings.ToLower(title)
	if strings.Contains(t, q) {
		score += scoreTitle
		if strings.HasPrefix(t, q) {
			score += scoreTitlePrefix
		}
	}
	if strings.Contains(strings.ToLower(description), q) {
		score += scoreDescription
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score += scoreTag
		}
	}
	return score
}

func highlights(re *regexp.Regexp, query string, m domain.Metadata) domain.Highlights {
	h := domain.Highlights{Title: []string{}, Description: []string{}, Tags: []string{}}
	if re == nil {
		return h
	}
	if found := re.FindAllString(m.Title, -1); found != nil {
		h.Title = found
	}
	if found := re.FindAllString(m.Description, -1); found != nil {
		h.Description = found
	}
	q := strings.ToLower(query)
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			h.Tags = append(h.Tags, t)
		}
	}
	return h
}
