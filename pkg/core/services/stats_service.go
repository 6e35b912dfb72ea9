package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
)

const (
	PeriodAll   = "all"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"

	statsTopN = 10
)

type StatsService struct {
	repo ports.LinkRepository
	now  func() time.Time
}

func NewStatsService(repo ports.LinkRepository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

// PeriodStart returns the lower bound of period relative to now. Unknown
// periods are treated as "all".
func PeriodStart(period string, now time.Time) (string, time.Time) {
	switch period {
	case PeriodWeek:
		return period, now.AddDate(0, 0, -7)
	case PeriodMonth:
		return period, now.AddDate(0, -1, 0)
	case PeriodYear:
		return period, now.AddDate(-1, 0, 0)
	default:
		return PeriodAll, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
}

func (s *StatsService) Stats(ctx context.Context, period string) (*domain.Stats, error) {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	sortBySlug(links)

	now := s.now().UTC()
	period, start := PeriodStart(period, now)

	stats := &domain.Stats{
		Tags:           tagHistogram(links),
		RecentActivity: []domain.Activity{},
		TopPerformers:  []domain.Performer{},
		Period:         period,
		PeriodStart:    start,
		GeneratedAt:    now,
	}

	for _, l := range links {
		stats.TotalLinks++
		stats.TotalClicks += l.Clicks
		stats.Sources.Add(l.Source())

		if created := l.Metadata.CreatedAt; created != nil && !created.Before(start) {
			stats.RecentActivity = append(stats.RecentActivity, domain.Activity{
				Slug:         l.Slug,
				Clicks:       l.Clicks,
				LastAccessed: created.UTC(),
			})
		}
		stats.TopPerformers = append(stats.TopPerformers, domain.Performer{
			Slug:   l.Slug,
			Clicks: l.Clicks,
			Title:  l.Metadata.Title,
		})
	}

	sort.SliceStable(stats.RecentActivity, func(i, j int) bool {
		return stats.RecentActivity[i].LastAccessed.After(stats.RecentActivity[j].LastAccessed)
	})
	sort.SliceStable(stats.TopPerformers, func(i, j int) bool {
		return stats.TopPerformers[i].Clicks > stats.TopPerformers[j].Clicks
	})
	stats.RecentActivity = stats.RecentActivity[:min(len(stats.RecentActivity), statsTopN)]
	stats.TopPerformers = stats.TopPerformers[:min(len(stats.TopPerformers), statsTopN)]

	if stats.TotalLinks > 0 {
		avg := float64(stats.TotalClicks) / float64(stats.TotalLinks)
		stats.AvgClicksPerLink = math.Round(avg*100) / 100
	}
	stats.UniqueTags = len(stats.Tags)
	return stats, nil
}
