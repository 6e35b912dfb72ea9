package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"go.uber.org/zap"
)

func newExportService(t *testing.T) *ExportService {
	t.Helper()
	repo, mr := newTestRepo(t)
	seed(t, repo,
		domain.Link{Slug: "old", Target: "https://old.example", Metadata: domain.Metadata{
			Title:       "Old, but \"gold\"",
			Description: "line one\nline two",
			Tags:        []string{"ml", "nlp"},
			Permanent:   true,
			CreatedAt:   daysAgo(10),
			GithubRepo:  "me/old",
		}},
		domain.Link{Slug: "orcid-1", Target: "https://doi.org/10.1/x", Metadata: domain.Metadata{Title: "Paper", CreatedAt: daysAgo(1)}},
		domain.Link{Slug: "bare", Target: "https://bare.example"},
	)
	require.NoError(t, mr.Set("count:old", "4"))

	svc := NewExportService(repo, zap.NewNop())
	svc.now = fixedClock
	return svc
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{in: "", expected: FormatJSON},
		{in: "json", expected: FormatJSON},
		{in: "csv", expected: FormatCSV},
		{in: "yaml", expected: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExportService_Export(t *testing.T) {
	svc := newExportService(t)
	ctx := context.Background()

	exp, err := svc.Export(ctx, "", "json")
	require.NoError(t, err)
	require.Len(t, exp.Export, 3)
	assert.Equal(t, "orcid-1", exp.Export[0].Slug)
	assert.Equal(t, "old", exp.Export[1].Slug)
	assert.Equal(t, "bare", exp.Export[2].Slug)
	assert.Equal(t, domain.ExportMetadata{Total: 3, GeneratedAt: fixedNow, Format: "json", Source: "all"}, exp.Metadata)

	old := exp.Export[1]
	assert.Equal(t, "ml,nlp", old.Tags)
	assert.Equal(t, int64(4), old.Clicks)
	assert.Equal(t, domain.SourceManual, old.Source)
	assert.Equal(t, "2025-06-05T10:00:00Z", old.CreatedAt)

	exp, err = svc.Export(ctx, "orcid", "csv")
	require.NoError(t, err)
	require.Len(t, exp.Export, 1)
	assert.Equal(t, "orcid", exp.Metadata.Source)

	_, err = svc.Export(ctx, "scholar", "json")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWriteExport_CSV(t *testing.T) {
	svc := newExportService(t)

	exp, err := svc.Export(context.Background(), "", FormatCSV)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, exp))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.ExportColumns, rows[0])
	assert.Equal(t, []string{
		"old", "https://old.example", "Old, but \"gold\"", "line one\nline two", "ml,nlp", "manual",
		"4", "true", "2025-06-05T10:00:00Z", "", "", "me/old",
	}, rows[2])
}

func TestWriteExport_YAMLMatchesJSON(t *testing.T) {
	svc := newExportService(t)
	ctx := context.Background()

	decode := func(format string) *domain.Export {
		exp, err := svc.Export(ctx, "", format)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteExport(&buf, exp))
		out, err := ReadExport(&buf, format)
		require.NoError(t, err)
		return out
	}

	asJSON := decode(FormatJSON)
	asYAML := decode(FormatYAML)
	if diff := cmp.Diff(asJSON.Export, asYAML.Export); diff != "" {
		t.Errorf("yaml export differs from json (-json +yaml):\n%s", diff)
	}
	assert.True(t, asYAML.Metadata.GeneratedAt.Equal(fixedNow))
	assert.Equal(t, FormatYAML, asYAML.Metadata.Format)
}

func TestExportService_Import(t *testing.T) {
	src := newExportService(t)
	ctx := context.Background()

	exp, err := src.Export(ctx, "", FormatJSON)
	require.NoError(t, err)
	entries := append(exp.Export,
		domain.ExportEntry{Slug: "bad slug", Target: "https://x.example"},
		domain.ExportEntry{Slug: "no-target", Target: "ftp://x.example"},
	)

	repo, _ := newTestRepo(t)
	dst := NewExportService(repo, zap.NewNop())
	dst.now = fixedClock

	n, err := dst.Import(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	old, err := repo.GetLink(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Zero(t, old.Clicks)
	assert.Equal(t, []string{"ml", "nlp"}, old.Metadata.Tags)
	assert.True(t, old.Metadata.Permanent)
	assert.Equal(t, *daysAgo(10), *old.Metadata.CreatedAt)

	bare, err := repo.GetLink(ctx, "bare")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, *bare.Metadata.CreatedAt)
}

func TestExportHelpers(t *testing.T) {
	at := time.Date(2025, 1, 2, 23, 0, 0, 0, time.FixedZone("x", -5*3600))
	assert.Equal(t, "research-export-2025-01-03.csv", ExportFilename(FormatCSV, at))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
	assert.Equal(t, "application/yaml", ContentType(FormatYAML))
	assert.Equal(t, "application/json", ContentType(FormatJSON))
}
