package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
)

func seedTagged(t *testing.T) (*TagService, func(slug string) []string) {
	t.Helper()
	repo, mr := newTestRepo(t)
	seed(t, repo,
		domain.Link{Slug: "a", Target: "https://a.example", Metadata: domain.Metadata{Tags: []string{"ml", "NLP"}}},
		domain.Link{Slug: "b", Target: "https://b.example", Metadata: domain.Metadata{Tags: []string{"ml"}}},
		domain.Link{Slug: "orcid-9", Target: "https://c.example", Metadata: domain.Metadata{Tags: []string{"Nature"}}},
	)
	require.NoError(t, mr.Set("count:a", "4"))

	svc := NewTagService(repo)
	svc.now = fixedClock
	tagsOf := func(slug string) []string {
		meta, err := repo.GetMeta(context.Background(), slug)
		require.NoError(t, err)
		require.NotNil(t, meta)
		return meta.Tags
	}
	return svc, tagsOf
}

func TestTagService_Stats(t *testing.T) {
	svc, _ := seedTagged(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLinks)
	assert.Equal(t, int64(4), stats.TotalClicks)
	assert.Equal(t, domain.SourceCounts{Manual: 2, ORCID: 1}, stats.Sources)
	assert.Equal(t, 3, stats.UniqueTags)
	assert.Equal(t, []domain.TagCount{{Tag: "ml", Count: 2}, {Tag: "NLP", Count: 1}, {Tag: "Nature", Count: 1}}, stats.TopTags)
}

func TestTagService_Suggest(t *testing.T) {
	svc, _ := seedTagged(t)

	got, err := svc.Suggest(context.Background(), "n")
	require.NoError(t, err)
	assert.Equal(t, []string{"NLP", "Nature"}, got)

	got, err = svc.Suggest(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
}

func TestTagService_AddRemove(t *testing.T) {
	svc, tagsOf := seedTagged(t)
	ctx := context.Background()

	n, err := svc.Add(ctx, []string{"a", "b", "missing"}, []string{"ml", "new"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"ml", "NLP", "new"}, tagsOf("a"))

	n, err = svc.Add(ctx, []string{"a"}, []string{"new"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = svc.Remove(ctx, []string{"a", "b"}, []string{"ml"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"new"}, tagsOf("b"))

	_, err = svc.Add(ctx, nil, []string{"x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTagService_RenameAndDelete(t *testing.T) {
	svc, tagsOf := seedTagged(t)
	ctx := context.Background()

	n, err := svc.Rename(ctx, "ml", "NLP")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"NLP"}, tagsOf("a"))
	assert.Equal(t, []string{"NLP"}, tagsOf("b"))

	n, err = svc.DeleteTag(ctx, "NLP")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{}, tagsOf("a"))
	assert.Equal(t, []string{"Nature"}, tagsOf("orcid-9"))

	_, err = svc.Rename(ctx, "", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.DeleteTag(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
