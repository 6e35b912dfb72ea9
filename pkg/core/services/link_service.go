package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type LinkService struct {
	repo    ports.LinkRepository
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewLinkService(repo ports.LinkRepository, baseURL string, logger *zap.Logger) *LinkService {
	return &LinkService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Create stores each input independently and reports a result per item.
// An existing link is overwritten and gets a fresh createdAt.
func (s *LinkService) Create(ctx context.Context, inputs []domain.LinkInput) []domain.CreateResult {
	results := make([]domain.CreateResult, 0, len(inputs))
	for _, in := range inputs {
		res, err := s.save(ctx, in, false)
		if err != nil {
			if !domain.IsValidation(err) {
				s.logger.Error("create link failed", zap.String("slug", in.Slug), zap.Error(err))
			}
			results = append(results, domain.CreateResult{Slug: in.Slug, Error: itemError(err)})
			continue
		}
		results = append(results, *res)
	}
	return results
}

// Upsert stores a single link, keeping createdAt when the link already exists.
func (s *LinkService) Upsert(ctx context.Context, in domain.LinkInput) (*domain.CreateResult, error) {
	return s.save(ctx, in, true)
}

func (s *LinkService) save(ctx context.Context, in domain.LinkInput, keepCreatedAt bool) (*domain.CreateResult, error) {
	if strings.TrimSpace(in.Slug) == "" || strings.TrimSpace(in.Target) == "" {
		return nil, fmt.Errorf("%w: slug and target required", domain.ErrValidation)
	}
	slug := domain.NormalizeSlug(in.Slug)
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, err
	}
	target := strings.TrimSpace(in.Target)
	if err := domain.ValidateTarget(target); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMeta(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get meta %s: %w", slug, err)
	}

	now := s.now().UTC()
	meta := domain.Metadata{}
	if existing != nil {
		meta = *existing
	}
	mergeInput(&meta, in)
	if keepCreatedAt && meta.CreatedAt != nil {
		meta.UpdatedAt = &now
	} else {
		meta.CreatedAt = &now
	}

	link := &domain.Link{Slug: slug, Target: target, Metadata: meta}
	if err := s.repo.SaveLink(ctx, link); err != nil {
		return nil, fmt.Errorf("save link %s: %w", slug, err)
	}

	return &domain.CreateResult{
		Slug:        slug,
		Short:       s.baseURL + "/" + slug,
		Target:      target,
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        meta.Tags,
	}, nil
}

// mergeInput overlays the non-empty fields of in. Permanent is always taken
// from the input.
func mergeInput(m *domain.Metadata, in domain.LinkInput) {
	m.Permanent = in.Permanent
	if in.Title != "" {
		m.Title = in.Title
	}
	if in.Description != "" {
		m.Description = in.Description
	}
	if in.Tags != nil {
		m.Tags = domain.UnionTags(nil, in.Tags)
	}
	if in.StartDate != "" {
		m.StartDate = in.StartDate
	}
	if in.EndDate != "" {
		m.EndDate = in.EndDate
	}
	if in.GithubRepo != "" {
		m.GithubRepo = in.GithubRepo
	}
}

// Get returns nil without error when the slug is unknown.
func (s *LinkService) Get(ctx context.Context, slug string) (*domain.Link, error) {
	return s.repo.GetLink(ctx, domain.NormalizeSlug(slug))
}

func (s *LinkService) List(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, domain.Pagination, error) {
	limit := clampLimit(filter.Limit, defaultListLimit, maxListLimit)
	offset := max(filter.Offset, 0)

	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	search := strings.ToLower(filter.Search)
	matched := make([]domain.Link, 0, len(links))
	for _, l := range links {
		if filter.Tag != "" && !l.Metadata.HasTag(filter.Tag) {
			continue
		}
		if filter.Source != "" && !strings.HasPrefix(l.Slug, filter.Source+"-") {
			continue
		}
		if search != "" && !matchesSearch(l.Metadata, search) {
			continue
		}
		matched = append(matched, l)
	}

	sortByCreatedDesc(matched)
	return domain.Page(matched, limit, offset), domain.NewPagination(len(matched), limit, offset), nil
}

func matchesSearch(m domain.Metadata, needle string) bool {
	if strings.Contains(strings.ToLower(m.Title), needle) ||
		strings.Contains(strings.ToLower(m.Description), needle) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// BulkUpdate applies patch to every slug that has metadata. Storage failures
// are reported per slug.
func (s *LinkService) BulkUpdate(ctx context.Context, slugs []string, patch domain.MetadataPatch) ([]domain.UpdateResult, error) {
	if len(slugs) == 0 {
		return nil, fmt.Errorf("%w: slugs array and updates object required", domain.ErrValidation)
	}
	if patch.Target != nil && *patch.Target != "" {
		if err := domain.ValidateTarget(*patch.Target); err != nil {
			return nil, err
		}
	}

	results := make([]domain.UpdateResult, 0, len(slugs))
	for _, raw := range slugs {
		slug := domain.NormalizeSlug(raw)
		meta, err := s.repo.GetMeta(ctx, slug)
		if err != nil {
			s.logger.Error("bulk update failed", zap.String("slug", slug), zap.Error(err))
			results = append(results, domain.UpdateResult{Slug: slug, Error: itemError(err)})
			continue
		}
		if meta == nil {
			results = append(results, domain.UpdateResult{Slug: raw, Error: "not found"})
			continue
		}

		patch.Apply(meta)
		now := s.now().UTC()
		meta.UpdatedAt = &now

		if patch.Target != nil && *patch.Target != "" {
			err = s.repo.SaveLink(ctx, &domain.Link{Slug: slug, Target: *patch.Target, Metadata: *meta})
		} else {
			err = s.repo.SaveMeta(ctx, slug, *meta)
		}
		if err != nil {
			s.logger.Error("bulk update failed", zap.String("slug", slug), zap.Error(err))
			results = append(results, domain.UpdateResult{Slug: slug, Error: itemError(err)})
			continue
		}

		results = append(results, domain.UpdateResult{Slug: slug, Updated: true, Metadata: meta})
	}
	return results, nil
}

func (s *LinkService) Delete(ctx context.Context, slug string) (*domain.DeleteResult, error) {
	key := domain.NormalizeSlug(slug)
	if key == "" {
		return nil, fmt.Errorf("%w: slug or slugs parameter required", domain.ErrValidation)
	}
	res, err := s.repo.DeleteLink(ctx, key)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deleted link",
		zap.String("slug", key),
		zap.Bool("existed", res.Existed),
		zap.Int64("link", res.KeysDeleted.Link),
		zap.Int64("count", res.KeysDeleted.Count),
		zap.Int64("meta", res.KeysDeleted.Meta),
	)
	return res, nil
}

// BulkDelete deletes each slug independently. A storage failure is reported
// on that slug's result and the rest of the batch still runs.
func (s *LinkService) BulkDelete(ctx context.Context, slugs []string) ([]domain.DeleteResult, error) {
	results := make([]domain.DeleteResult, 0, len(slugs))
	for _, slug := range slugs {
		key := domain.NormalizeSlug(slug)
		if key == "" {
			continue
		}
		res, err := s.Delete(ctx, slug)
		if err != nil {
			s.logger.Error("bulk delete failed", zap.String("slug", key), zap.Error(err))
			results = append(results, domain.DeleteResult{Key: key, Error: "failed to delete"})
			continue
		}
		results = append(results, *res)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: slug or slugs parameter required", domain.ErrValidation)
	}
	return results, nil
}

// Resolve returns the redirect target and counts the click. A failed
// increment is logged and never fails the redirect.
func (s *LinkService) Resolve(ctx context.Context, slug string) (string, error) {
	key := domain.NormalizeSlug(slug)
	if key == "" {
		return "", domain.ErrNotFound
	}
	target, err := s.repo.GetTarget(ctx, key)
	if err != nil {
		return "", err
	}
	if target == "" {
		return "", domain.ErrNotFound
	}

	if _, err := s.repo.IncrementClicks(ctx, key); err != nil {
		s.logger.Warn("click count failed", zap.String("slug", key), zap.Error(err))
	}
	return target, nil
}

// Directory lists every link by clicks desc, with collections resolved
// against the same snapshot.
func (s *LinkService) Directory(ctx context.Context) ([]domain.DirectoryEntry, []domain.CollectionView, error) {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, nil, err
	}
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, nil, err
	}

	sortBySlug(links)
	sort.SliceStable(links, func(i, j int) bool { return links[i].Clicks > links[j].Clicks })

	entries := make([]domain.DirectoryEntry, 0, len(links))
	bySlug := make(map[string]domain.Link, len(links))
	for _, l := range links {
		entries = append(entries, domain.NewDirectoryEntry(l))
		bySlug[l.Slug] = l
	}

	sort.Slice(collections, func(i, j int) bool { return collections[i].ID < collections[j].ID })
	views := make([]domain.CollectionView, 0, len(collections))
	for _, c := range collections {
		views = append(views, resolveCollection(c, func(slug string) (domain.Link, bool) {
			l, ok := bySlug[slug]
			return l, ok
		}))
	}
	return entries, views, nil
}

func sortBySlug(links []domain.Link) {
	sort.Slice(links, func(i, j int) bool { return links[i].Slug < links[j].Slug })
}

// sortByCreatedDesc orders newest first. Links without createdAt sort last,
// ties fall back to slug order.
func sortByCreatedDesc(links []domain.Link) {
	sort.SliceStable(links, func(i, j int) bool {
		a, b := createdUnix(links[i]), createdUnix(links[j])
		if a != b {
			return a > b
		}
		return links[i].Slug < links[j].Slug
	})
}

func createdUnix(l domain.Link) int64 {
	if l.Metadata.CreatedAt == nil {
		return 0
	}
	return l.Metadata.CreatedAt.UnixNano()
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// itemError renders a per-item failure for bulk results. Storage errors are
// not exposed verbatim.
func itemError(err error) string {
	switch {
	case domain.IsValidation(err):
		return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	default:
		return "failed to save"
	}
}
