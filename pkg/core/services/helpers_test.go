package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	redisrepo "github.com/wadjakorntonsri/research-links/pkg/adapters/repository/redis"
	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestRepo(t *testing.T) (*redisrepo.Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo, err := redisrepo.NewRepository("redis://"+mr.Addr(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

// seed stores links with createdAt offsets in days before fixedNow.
func seed(t *testing.T, repo ports.LinkRepository, links ...domain.Link) {
	t.Helper()
	for i := range links {
		require.NoError(t, repo.SaveLink(context.Background(), &links[i]))
	}
}

func daysAgo(n int) *time.Time {
	t := fixedNow.AddDate(0, 0, -n)
	return &t
}

// failingCounter wraps a repository and fails every click increment.
type failingCounter struct {
	ports.LinkRepository
	calls int
}

func (f *failingCounter) IncrementClicks(ctx context.Context, slug string) (int64, error) {
	f.calls++
	return 0, errors.New("connection reset")
}

// failingWrites fails metadata writes and deletes for one slug.
type failingWrites struct {
	ports.LinkRepository
	slug string
}

func (f *failingWrites) SaveMeta(ctx context.Context, slug string, meta domain.Metadata) error {
	if slug == f.slug {
		return errors.New("READONLY replica")
	}
	return f.LinkRepository.SaveMeta(ctx, slug, meta)
}

func (f *failingWrites) DeleteLink(ctx context.Context, slug string) (*domain.DeleteResult, error) {
	if slug == f.slug {
		return nil, errors.New("READONLY replica")
	}
	return f.LinkRepository.DeleteLink(ctx, slug)
}
