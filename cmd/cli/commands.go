package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/research-links/pkg/adapters/storage/s3"
	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/core/services"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

func (c *cli) exportCmd() *cobra.Command {
	var format, source, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export links as json, csv or yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := c.app.Export.Export(cmd.Context(), source, format)
			if err != nil {
				return err
			}
			if out == "" {
				return services.WriteExport(cmd.OutOrStdout(), exp)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := services.WriteExport(f, exp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d links to %s\n", exp.Metadata.Total, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatJSON, "output format: json, csv or yaml")
	cmd.Flags().StringVarP(&source, "source", "s", "", "only export links from this source (manual, orcid, openreview)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import links from a json or yaml export",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			exp, err := services.ReadExport(f, formatFromPath(file))
			if err != nil {
				return err
			}
			n, err := c.app.Export.Import(cmd.Context(), exp.Export)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d links\n", n, len(exp.Export))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "export file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) ingestCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Refresh works from ORCID and OpenReview",
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []domain.Source
			if source != "" && source != "all" {
				s, ok := domain.ParseSource(source)
				if !ok || s == domain.SourceManual {
					return fmt.Errorf("unknown source %q", source)
				}
				names = append(names, s)
			}

			ingested, err := c.app.Ingest.Ingest(cmd.Context(), names...)
			if err != nil {
				return err
			}
			if len(ingested) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sources configured")
				return nil
			}
			for _, name := range []domain.Source{domain.SourceORCID, domain.SourceOpenReview} {
				if links, ok := ingested[name]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d links\n", name, len(links))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "all", "orcid, openreview or all")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show click and tag statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.app.Stats.Stats(cmd.Context(), period)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Period: %s (since %s)\n", stats.Period, stats.PeriodStart.Format("2006-01-02"))
			fmt.Fprintf(w, "Links: %d\n", stats.TotalLinks)
			fmt.Fprintf(w, "Clicks: %d (avg %.2f per link)\n", stats.TotalClicks, stats.AvgClicksPerLink)
			fmt.Fprintf(w, "Tags: %d\n", stats.UniqueTags)
			if len(stats.TopPerformers) > 0 {
				fmt.Fprintln(w, "Top links:")
				for _, p := range stats.TopPerformers {
					fmt.Fprintf(w, "  %-30s %d\n", p.Slug, p.Clicks)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", services.PeriodAll, "week, month, year or all")
	return cmd
}

func (c *cli) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload a JSON export to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := s3.NewS3Storage(ctx, s3.S3Config{
				Region:          c.cfg.S3Region,
				Bucket:          c.cfg.S3Bucket,
				AccessKeyID:     c.cfg.S3AccessKeyID,
				SecretAccessKey: c.cfg.S3SecretAccessKey,
				Endpoint:        c.cfg.S3Endpoint,
			})
			if err != nil {
				return err
			}

			res, err := uploadBackup(ctx, c.app.Export, store)
			if err != nil {
				return err
			}
			c.app.Logger.Info("backup uploaded", zap.String("key", res.Key), zap.Int("links", res.Links))
			fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			return nil
		},
	}
}

type backupResult struct {
	Key   string
	URL   string
	Links int
}

// uploadBackup writes a full JSON export to store under a timestamped key.
func uploadBackup(ctx context.Context, export ports.ExportService, store ports.BlobStore) (*backupResult, error) {
	exp, err := export.Export(ctx, "", services.FormatJSON)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := services.WriteExport(&buf, exp); err != nil {
		return nil, err
	}

	key := backupKey(exp.Metadata.GeneratedAt)
	url, err := store.Upload(ctx, key, services.ContentType(services.FormatJSON), buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}
	return &backupResult{Key: key, URL: url, Links: exp.Metadata.Total}, nil
}

func backupKey(t time.Time) string {
	return fmt.Sprintf("backups/research-export-%s.json", t.UTC().Format("20060102T150405Z"))
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return services.FormatYAML
	default:
		return services.FormatJSON
	}
}
