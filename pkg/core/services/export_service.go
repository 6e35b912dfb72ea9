package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

type ExportService struct {
	repo   ports.LinkRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewExportService(repo ports.LinkRepository, logger *zap.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger, now: time.Now}
}

// ParseFormat accepts json, csv and yaml. Empty means json.
func ParseFormat(format string) (string, error) {
	switch format {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV, FormatYAML:
		return format, nil
	}
	return "", fmt.Errorf("%w: format must be json, csv or yaml", domain.ErrValidation)
}

// Export flattens every link, optionally restricted to one source, newest first.
func (s *ExportService) Export(ctx context.Context, source, format string) (*domain.Export, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if _, ok := domain.ParseSource(source); !ok {
			return nil, fmt.Errorf("%w: unknown source %q", domain.ErrValidation, source)
		}
	}

	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	sortByCreatedDesc(links)

	entries := make([]domain.ExportEntry, 0, len(links))
	for _, l := range links {
		if source != "" && string(l.Source()) != source {
			continue
		}
		entries = append(entries, domain.ExportEntryFromLink(l))
	}

	sourceLabel := source
	if sourceLabel == "" {
		sourceLabel = "all"
	}
	return &domain.Export{
		Export: entries,
		Metadata: domain.ExportMetadata{
			Total:       len(entries),
			GeneratedAt: s.now().UTC(),
			Format:      format,
			Source:      sourceLabel,
		},
	}, nil
}

// Import upserts exported entries. Invalid rows are skipped and logged;
// clicks are not restored.
func (s *ExportService) Import(ctx context.Context, entries []domain.ExportEntry) (int, error) {
	imported := 0
	for _, e := range entries {
		link := e.ToLink()
		link.Slug = domain.NormalizeSlug(link.Slug)
		if err := domain.ValidateSlug(link.Slug); err != nil {
			s.logger.Warn("skipping import row", zap.String("slug", e.Slug), zap.Error(err))
			continue
		}
		if err := domain.ValidateTarget(link.Target); err != nil {
			s.logger.Warn("skipping import row", zap.String("slug", e.Slug), zap.Error(err))
			continue
		}
		if link.Metadata.CreatedAt == nil {
			now := s.now().UTC()
			link.Metadata.CreatedAt = &now
		}
		if err := s.repo.SaveLink(ctx, &link); err != nil {
			return imported, fmt.Errorf("import %s: %w", link.Slug, err)
		}
		imported++
	}
	return imported, nil
}

// ContentType returns the media type for an export format.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

// ExportFilename is the attachment name for a download generated at t.
func ExportFilename(format string, t time.Time) string {
	return fmt.Sprintf("research-export-%s.%s", t.UTC().Format("2006-01-02"), format)
}

// WriteExport encodes exp in its metadata format.
func WriteExport(w io.Writer, exp *domain.Export) error {
	switch exp.Metadata.Format {
	case FormatCSV:
		return writeCSV(w, exp.Export)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(exp)
	}
}

func writeCSV(w io.Writer, entries []domain.ExportEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportColumns); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Slug,
			e.Target,
			e.Title,
			e.Description,
			e.Tags,
			string(e.Source),
			strconv.FormatInt(e.Clicks, 10),
			strconv.FormatBool(e.Permanent),
			e.CreatedAt,
			e.StartDate,
			e.EndDate,
			e.GithubRepo,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadExport decodes a JSON or YAML export document.
func ReadExport(r io.Reader, format string) (*domain.Export, error) {
	var exp domain.Export
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&exp)
	default:
		err = json.NewDecoder(r).Decode(&exp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode export: %v", domain.ErrValidation, err)
	}
	return &exp, nil
}
