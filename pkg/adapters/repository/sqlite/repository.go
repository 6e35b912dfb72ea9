package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: opens its own database.
	if strings.Contains(dbURL, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		slug TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		clicks INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS link_meta (
		slug TEXT PRIMARY KEY,
		title TEXT,
		description TEXT,
		tags JSON,
		permanent INTEGER NOT NULL DEFAULT 0,
		created_at TEXT,
		updated_at TEXT,
		start_date TEXT,
		end_date TEXT,
		github_repo TEXT
	);

	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		name TEXT,
		description TEXT,
		projects JSON,
		tags JSON,
		created_at TEXT,
		updated_at TEXT
	);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetTarget(ctx context.Context, slug string) (string, error) {
	var target string
	err := r.db.QueryRowContext(ctx, `SELECT target FROM links WHERE slug = ?`, slug).Scan(&target)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return target, err
}

const linkSelect = `
	SELECT l.slug, l.target, l.clicks,
		m.title, m.description, m.tags, m.permanent, m.created_at, m.updated_at,
		m.start_date, m.end_date, m.github_repo
	FROM links l
	LEFT JOIN link_meta m ON m.slug = l.slug`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLink(row rowScanner) (domain.Link, error) {
	var l domain.Link
	var title, description, tags, createdAt, updatedAt, startDate, endDate, githubRepo sql.NullString
	var permanent sql.NullInt64

	err := row.Scan(&l.Slug, &l.Target, &l.Clicks,
		&title, &description, &tags, &permanent, &createdAt, &updatedAt,
		&startDate, &endDate, &githubRepo)
	if err != nil {
		return l, err
	}

	l.Metadata = domain.MetadataFromHash(map[string]string{
		domain.FieldTitle:       title.String,
		domain.FieldDescription: description.String,
		domain.FieldPermanent:   strconv.FormatInt(permanent.Int64, 10),
		domain.FieldCreatedAt:   createdAt.String,
		domain.FieldUpdatedAt:   updatedAt.String,
		domain.FieldStartDate:   startDate.String,
		domain.FieldEndDate:     endDate.String,
		domain.FieldGithubRepo:  githubRepo.String,
	})
	l.Metadata.Tags = decodeList(tags.String)
	return l, nil
}

func (r *SQLiteRepository) GetLink(ctx context.Context, slug string) (*domain.Link, error) {
	l, err := scanLink(r.db.QueryRowContext(ctx, linkSelect+` WHERE l.slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteRepository) GetMeta(ctx context.Context, slug string) (*domain.Metadata, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM link_meta WHERE slug = ?`, slug).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Meta may exist without a link row, so read it through a synthetic join.
	l, err := scanLink(r.db.QueryRowContext(ctx, `
		SELECT m.slug, '', 0,
			m.title, m.description, m.tags, m.permanent, m.created_at, m.updated_at,
			m.start_date, m.end_date, m.github_repo
		FROM link_meta m WHERE m.slug = ?`, slug))
	if err != nil {
		return nil, err
	}
	return &l.Metadata, nil
}

func (r *SQLiteRepository) SaveLink(ctx context.Context, link *domain.Link) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO links (slug, target) VALUES (?, ?)
		ON CONFLICT(slug) DO UPDATE SET target = excluded.target`,
		link.Slug, link.Target)
	if err != nil {
		return err
	}

	if err := saveMeta(ctx, tx, link.Slug, link.Metadata); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) SaveMeta(ctx context.Context, slug string, meta domain.Metadata) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveMeta(ctx, tx, slug, meta); err != nil {
		return err
	}
	return tx.Commit()
}

func saveMeta(ctx context.Context, tx *sql.Tx, slug string, meta domain.Metadata) error {
	h := meta.ToHash()
	permanent := 0
	if meta.Permanent {
		permanent = 1
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO link_meta
			(slug, title, description, tags, permanent, created_at, updated_at, start_date, end_date, github_repo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		slug, h[domain.FieldTitle], h[domain.FieldDescription], encodeList(meta.Tags), permanent,
		h[domain.FieldCreatedAt], h[domain.FieldUpdatedAt],
		h[domain.FieldStartDate], h[domain.FieldEndDate], h[domain.FieldGithubRepo])
	return err
}

// DeleteLink reports counts in key-space terms: a link row with clicks > 0
// stands for an existing counter.
func (r *SQLiteRepository) DeleteLink(ctx context.Context, slug string) (*domain.DeleteResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result := &domain.DeleteResult{Key: slug}

	var clicks int64
	err = tx.QueryRowContext(ctx, `SELECT clicks FROM links WHERE slug = ?`, slug).Scan(&clicks)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, err
	default:
		result.Existed = true
		result.KeysDeleted.Link = 1
		if clicks > 0 {
			result.KeysDeleted.Count = 1
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE slug = ?`, slug); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM link_meta WHERE slug = ?`, slug)
	if err != nil {
		return nil, err
	}
	if result.KeysDeleted.Meta, err = res.RowsAffected(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) IncrementClicks(ctx context.Context, slug string) (int64, error) {
	var clicks int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE links SET clicks = clicks + 1 WHERE slug = ? RETURNING clicks`, slug).Scan(&clicks)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound
	}
	return clicks, err
}

func (r *SQLiteRepository) ListLinks(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, linkSelect+` ORDER BY l.slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// --- Collection Repository Implementation ---

const collectionSelect = `SELECT id, name, description, projects, tags, created_at, updated_at FROM collections`

func scanCollection(row rowScanner) (domain.Collection, error) {
	var id string
	var name, description, projects, tags, createdAt, updatedAt sql.NullString
	if err := row.Scan(&id, &name, &description, &projects, &tags, &createdAt, &updatedAt); err != nil {
		return domain.Collection{}, err
	}
	c := domain.CollectionFromHash(id, map[string]string{
		"name":        name.String,
		"description": description.String,
		"createdAt":   createdAt.String,
		"updatedAt":   updatedAt.String,
	})
	c.Projects = decodeList(projects.String)
	c.Tags = decodeList(tags.String)
	return c, nil
}

func (r *SQLiteRepository) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	c, err := scanCollection(r.db.QueryRowContext(ctx, collectionSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepository) CollectionExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

func (r *SQLiteRepository) SaveCollection(ctx context.Context, c *domain.Collection) error {
	h := c.ToHash()
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO collections (id, name, description, projects, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, encodeList(c.Projects), encodeList(c.Tags), h["createdAt"], h["updatedAt"])
	return err
}

func (r *SQLiteRepository) DeleteCollection(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := r.db.QueryContext(ctx, collectionSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := []domain.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func decodeList(s string) []string {
	items := []string{}
	if s == "" {
		return items
	}
	_ = json.Unmarshal([]byte(s), &items)
	return items
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
