package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type IngestService struct {
	repo    ports.LinkRepository
	sources []ports.WorkSource
	logger  *zap.Logger
	now     func() time.Time
}

func NewIngestService(repo ports.LinkRepository, sources []ports.WorkSource, logger *zap.Logger) *IngestService {
	return &IngestService{repo: repo, sources: sources, logger: logger, now: time.Now}
}

// Ingest fetches the requested sources concurrently (all configured sources
// when none are named) and caches their works as links. A source that fails
// to fetch yields an empty set; storage errors abort the run.
func (s *IngestService) Ingest(ctx context.Context, names ...domain.Source) (map[domain.Source][]domain.Link, error) {
	selected := s.selectSources(names)
	results := make([][]domain.Link, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range selected {
		g.Go(func() error {
			works, err := src.FetchWorks(gctx)
			if err != nil {
				s.logger.Error("fetch works failed", zap.String("source", string(src.Name())), zap.Error(err))
				results[i] = []domain.Link{}
				return nil
			}
			links, err := s.cache(gctx, Dedup(works))
			if err != nil {
				return fmt.Errorf("cache %s works: %w", src.Name(), err)
			}
			s.logger.Info("ingested works",
				zap.String("source", string(src.Name())),
				zap.Int("fetched", len(works)),
				zap.Int("links", len(links)),
			)
			results[i] = links
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[domain.Source][]domain.Link, len(selected))
	for i, src := range selected {
		out[src.Name()] = results[i]
	}
	return out, nil
}

func (s *IngestService) selectSources(names []domain.Source) []ports.WorkSource {
	if len(names) == 0 {
		return s.sources
	}
	want := make(map[domain.Source]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var selected []ports.WorkSource
	for _, src := range s.sources {
		if want[src.Name()] {
			selected = append(selected, src)
		}
	}
	return selected
}

// cache writes works that have no stored metadata yet. When metadata already
// exists the stored link wins and nothing is written. Upstream ids are
// lowercased into slugs; works whose slug is still invalid are skipped.
func (s *IngestService) cache(ctx context.Context, works []domain.ExternalWork) ([]domain.Link, error) {
	links := make([]domain.Link, 0, len(works))
	for _, w := range works {
		w.Slug = domain.NormalizeSlug(w.Slug)
		if err := domain.ValidateSlug(w.Slug); err != nil {
			s.logger.Warn("skipping work", zap.String("slug", w.Slug), zap.Error(err))
			continue
		}
		if err := domain.ValidateTarget(w.Target); err != nil {
			s.logger.Warn("skipping work", zap.String("slug", w.Slug), zap.Error(err))
			continue
		}

		meta, err := s.repo.GetMeta(ctx, w.Slug)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			stored, err := s.repo.GetLink(ctx, w.Slug)
			if err != nil {
				return nil, err
			}
			if stored != nil {
				links = append(links, *stored)
				continue
			}
			links = append(links, domain.Link{Slug: w.Slug, Target: w.Target, Metadata: *meta})
			continue
		}

		now := s.now().UTC()
		link := domain.Link{
			Slug:   w.Slug,
			Target: w.Target,
			Metadata: domain.Metadata{
				Title:       w.Title,
				Description: w.Description,
				Tags:        domain.UnionTags(nil, w.Tags),
				CreatedAt:   &now,
				StartDate:   w.StartDate,
			},
		}
		if err := s.repo.SaveLink(ctx, &link); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// NormalizeTitle lowercases, drops everything that is not a letter, digit or
// space, and collapses whitespace.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Dedup collapses works with the same normalized title. The kept variant is
// the one whose venue mentions proceedings, then the most recent. Groups keep
// the position of their first appearance; untitled works are never merged.
func Dedup(works []domain.ExternalWork) []domain.ExternalWork {
	out := make([]domain.ExternalWork, 0, len(works))
	index := map[string]int{}
	for _, w := range works {
		key := NormalizeTitle(w.Title)
		if key == "" {
			out = append(out, w)
			continue
		}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, w)
			continue
		}
		if preferWork(w, out[i]) {
			out[i] = w
		}
	}
	return out
}

func preferWork(candidate, current domain.ExternalWork) bool {
	cp, kp := isProceedings(candidate), isProceedings(current)
	if cp != kp {
		return cp
	}
	return candidate.Date.After(current.Date)
}

func isProceedings(w domain.ExternalWork) bool {
	return strings.Contains(strings.ToLower(w.Venue), "proceedings")
}
