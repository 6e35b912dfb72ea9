package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

const (
	linkPrefix       = "link:"
	metaPrefix       = "meta:"
	countPrefix      = "count:"
	collectionPrefix = "collection:"

	scanCount = 500
)

// Repository stores links in the Redis key space:
//
//	link:<slug>        target URL (string)
//	meta:<slug>        metadata (hash)
//	count:<slug>       click counter (integer)
//	collection:<id>    collection (hash)
type Repository struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewRepository builds a client for redisURL. go-redis dials lazily on the first
// command and reconnects with backoff, so no connection is made here.
func NewRepository(redisURL string, logger *zap.Logger) (*Repository, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 10
	opts.MinRetryBackoff = 50 * time.Millisecond
	opts.MaxRetryBackoff = 3 * time.Second

	return &Repository{
		client: goredis.NewClient(opts),
		logger: logger,
	}, nil
}

func linkKey(slug string) string  { return linkPrefix + slug }
func metaKey(slug string) string  { return metaPrefix + slug }
func countKey(slug string) string { return countPrefix + slug }

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) GetTarget(ctx context.Context, slug string) (string, error) {
	target, err := r.client.Get(ctx, linkKey(slug)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return target, err
}

func (r *Repository) GetLink(ctx context.Context, slug string) (*domain.Link, error) {
	links, err := r.fetchLinks(ctx, []string{slug})
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}
	return &links[0], nil
}

func (r *Repository) GetMeta(ctx context.Context, slug string) (*domain.Metadata, error) {
	h, err := r.client.HGetAll(ctx, metaKey(slug)).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}
	meta := domain.MetadataFromHash(h)
	return &meta, nil
}

func (r *Repository) SaveLink(ctx context.Context, link *domain.Link) error {
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, linkKey(link.Slug), link.Target, 0)
		pipe.Del(ctx, metaKey(link.Slug))
		pipe.HSet(ctx, metaKey(link.Slug), toArgs(link.Metadata.ToHash()))
		return nil
	})
	return err
}

func (r *Repository) SaveMeta(ctx context.Context, slug string, meta domain.Metadata) error {
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, metaKey(slug))
		pipe.HSet(ctx, metaKey(slug), toArgs(meta.ToHash()))
		return nil
	})
	return err
}

func (r *Repository) DeleteLink(ctx context.Context, slug string) (*domain.DeleteResult, error) {
	var exists *goredis.IntCmd
	var dels [3]*goredis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		exists = pipe.Exists(ctx, linkKey(slug))
		dels[0] = pipe.Del(ctx, linkKey(slug))
		dels[1] = pipe.Del(ctx, countKey(slug))
		dels[2] = pipe.Del(ctx, metaKey(slug))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.DeleteResult{
		Key:     slug,
		Existed: exists.Val() > 0,
		KeysDeleted: domain.KeysDeleted{
			Link:  dels[0].Val(),
			Count: dels[1].Val(),
			Meta:  dels[2].Val(),
		},
	}, nil
}

func (r *Repository) IncrementClicks(ctx context.Context, slug string) (int64, error) {
	return r.client.Incr(ctx, countKey(slug)).Result()
}

func (r *Repository) ListLinks(ctx context.Context) ([]domain.Link, error) {
	keys, err := r.scan(ctx, linkPrefix+"*")
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(keys))
	for _, k := range keys {
		slugs = append(slugs, strings.TrimPrefix(k, linkPrefix))
	}
	return r.fetchLinks(ctx, slugs)
}

// fetchLinks loads target, counter and meta for every slug in one pipeline.
// Slugs whose link key is missing are skipped.
func (r *Repository) fetchLinks(ctx context.Context, slugs []string) ([]domain.Link, error) {
	if len(slugs) == 0 {
		return []domain.Link{}, nil
	}

	type cmds struct {
		target *goredis.StringCmd
		count  *goredis.StringCmd
		meta   *goredis.MapStringStringCmd
	}
	pending := make([]cmds, len(slugs))

	_, err := r.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, slug := range slugs {
			pending[i] = cmds{
				target: pipe.Get(ctx, linkKey(slug)),
				count:  pipe.Get(ctx, countKey(slug)),
				meta:   pipe.HGetAll(ctx, metaKey(slug)),
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, err
	}

	links := make([]domain.Link, 0, len(slugs))
	for i, slug := range slugs {
		target, err := pending[i].target.Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		links = append(links, domain.Link{
			Slug:     slug,
			Target:   target,
			Clicks:   parseCount(pending[i].count),
			Metadata: domain.MetadataFromHash(pending[i].meta.Val()),
		})
	}
	return links, nil
}

func parseCount(cmd *goredis.StringCmd) int64 {
	v, err := cmd.Result()
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// scan enumerates keys matching pattern with SCAN so large key spaces do not
// block the server the way KEYS would.
func (r *Repository) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// --- Collections ---

func (r *Repository) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	h, err := r.client.HGetAll(ctx, collectionPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}
	c := domain.CollectionFromHash(id, h)
	return &c, nil
}

func (r *Repository) CollectionExists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, collectionPrefix+id).Result()
	return n > 0, err
}

func (r *Repository) SaveCollection(ctx context.Context, c *domain.Collection) error {
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, collectionPrefix+c.ID)
		pipe.HSet(ctx, collectionPrefix+c.ID, toArgs(c.ToHash()))
		return nil
	})
	return err
}

func (r *Repository) DeleteCollection(ctx context.Context, id string) error {
	return r.client.Del(ctx, collectionPrefix+id).Err()
}

func (r *Repository) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	keys, err := r.scan(ctx, collectionPrefix+"*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []domain.Collection{}, nil
	}

	results := make([]*goredis.MapStringStringCmd, len(keys))
	_, err = r.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, k := range keys {
			results[i] = pipe.HGetAll(ctx, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, 0, len(keys))
	for i, k := range keys {
		h := results[i].Val()
		if len(h) == 0 {
			continue
		}
		collections = append(collections, domain.CollectionFromHash(strings.TrimPrefix(k, collectionPrefix), h))
	}
	return collections, nil
}

func toArgs(h map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Ensure interface compliance
var _ ports.LinkRepository = (*Repository)(nil)
