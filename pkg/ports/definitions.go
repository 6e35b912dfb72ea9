package ports

import (
	"context"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
)

// LinkRepository defines storage operations over the link/meta/count/collection key space
type LinkRepository interface {
	Ping(ctx context.Context) error

	// Links
	// GetTarget returns "" when the slug is missing.
	GetTarget(ctx context.Context, slug string) (string, error)
	GetLink(ctx context.Context, slug string) (*domain.Link, error)
	// GetMeta returns nil when there is no meta hash.
	GetMeta(ctx context.Context, slug string) (*domain.Metadata, error)
	// SaveLink sets the target and replaces the full meta hash.
	SaveLink(ctx context.Context, link *domain.Link) error
	SaveMeta(ctx context.Context, slug string, meta domain.Metadata) error
	DeleteLink(ctx context.Context, slug string) (*domain.DeleteResult, error)
	IncrementClicks(ctx context.Context, slug string) (int64, error)
	ListLinks(ctx context.Context) ([]domain.Link, error) // full scan

	// Collections
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)
	CollectionExists(ctx context.Context, id string) (bool, error)
	SaveCollection(ctx context.Context, collection *domain.Collection) error
	DeleteCollection(ctx context.Context, id string) error
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	Close() error
}

// WorkSource fetches normalized works from an external research profile.
type WorkSource interface {
	Name() domain.Source
	FetchWorks(ctx context.Context) ([]domain.ExternalWork, error)
}

// BlobStore stores export snapshots.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// LinkService defines the link business logic operations
type LinkService interface {
	Create(ctx context.Context, inputs []domain.LinkInput) []domain.CreateResult
	Upsert(ctx context.Context, input domain.LinkInput) (*domain.CreateResult, error)
	Get(ctx context.Context, slug string) (*domain.Link, error)
	List(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, domain.Pagination, error)
	BulkUpdate(ctx context.Context, slugs []string, patch domain.MetadataPatch) ([]domain.UpdateResult, error)
	Delete(ctx context.Context, slug string) (*domain.DeleteResult, error)
	BulkDelete(ctx context.Context, slugs []string) ([]domain.DeleteResult, error)
	Resolve(ctx context.Context, slug string) (string, error)
	Directory(ctx context.Context) ([]domain.DirectoryEntry, []domain.CollectionView, error)
}

// CollectionService defines business logic for collections
type CollectionService interface {
	Create(ctx context.Context, c domain.Collection) (*domain.Collection, error)
	Update(ctx context.Context, id string, patch domain.CollectionPatch) (*domain.Collection, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Collection, error)
	GetPublic(ctx context.Context, id string) (*domain.CollectionView, error)
}

// TagService defines bulk tag maintenance
type TagService interface {
	Stats(ctx context.Context) (*domain.TagStats, error)
	Suggest(ctx context.Context, prefix string) ([]string, error)
	Add(ctx context.Context, slugs, tags []string) (int, error)
	Remove(ctx context.Context, slugs, tags []string) (int, error)
	Rename(ctx context.Context, oldTag, newTag string) (int, error)
	DeleteTag(ctx context.Context, tag string) (int, error)
}

type SearchService interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
}

type StatsService interface {
	Stats(ctx context.Context, period string) (*domain.Stats, error)
}

type ExportService interface {
	Export(ctx context.Context, source, format string) (*domain.Export, error)
	Import(ctx context.Context, entries []domain.ExportEntry) (int, error)
}

type IngestService interface {
	Ingest(ctx context.Context, sources ...domain.Source) (map[domain.Source][]domain.Link, error)
}
