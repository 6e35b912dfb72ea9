package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
)

type CollectionService struct {
	repo ports.LinkRepository
	now  func() time.Time
}

func NewCollectionService(repo ports.LinkRepository) *CollectionService {
	return &CollectionService{repo: repo, now: time.Now}
}

func validateCollectionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if err := domain.ValidateCollectionID(id); err != nil {
		return fmt.Errorf("%w: id must contain only alphanumeric characters, hyphens, and underscores", err)
	}
	return nil
}

func (s *CollectionService) Create(ctx context.Context, c domain.Collection) (*domain.Collection, error) {
	if c.ID == "" || strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: id and name are required", domain.ErrValidation)
	}
	if err := validateCollectionID(c.ID); err != nil {
		return nil, err
	}

	exists, err := s.repo.CollectionExists(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("collection %s: %w", c.ID, domain.ErrAlreadyExists)
	}

	now := s.now().UTC()
	c.Projects = cleanList(c.Projects)
	c.Tags = cleanList(c.Tags)
	c.CreatedAt = &now
	c.UpdatedAt = &now

	if err := s.repo.SaveCollection(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CollectionService) Update(ctx context.Context, id string, patch domain.CollectionPatch) (*domain.Collection, error) {
	if err := validateCollectionID(id); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Projects != nil {
		c.Projects = cleanList(*patch.Projects)
	}
	if patch.Tags != nil {
		c.Tags = cleanList(*patch.Tags)
	}
	now := s.now().UTC()
	c.UpdatedAt = &now

	if err := s.repo.SaveCollection(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CollectionService) Delete(ctx context.Context, id string) error {
	if err := validateCollectionID(id); err != nil {
		return err
	}
	return s.repo.DeleteCollection(ctx, id)
}

func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(collections, func(i, j int) bool { return collections[i].ID < collections[j].ID })
	return collections, nil
}

// GetPublic resolves the collection's projects to links, dropping slugs that
// no longer exist.
func (s *CollectionService) GetPublic(ctx context.Context, id string) (*domain.CollectionView, error) {
	if err := validateCollectionID(id); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}

	links := make(map[string]domain.Link, len(c.Projects))
	for _, slug := range c.Projects {
		key := domain.NormalizeSlug(slug)
		l, err := s.repo.GetLink(ctx, key)
		if err != nil {
			return nil, err
		}
		if l != nil {
			links[key] = *l
		}
	}

	view := resolveCollection(*c, func(slug string) (domain.Link, bool) {
		l, ok := links[slug]
		return l, ok
	})
	return &view, nil
}

// resolveCollection keeps project order and skips dangling slugs.
func resolveCollection(c domain.Collection, lookup func(string) (domain.Link, bool)) domain.CollectionView {
	view := domain.CollectionView{Collection: c, Links: []domain.Link{}}
	for _, slug := range c.Projects {
		if l, ok := lookup(domain.NormalizeSlug(slug)); ok {
			view.Links = append(view.Links, l)
		}
	}
	return view
}

func cleanList(items []string) []string {
	return domain.UnionTags(nil, items)
}
