package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/research-links/pkg/app"
	"github.com/wadjakorntonsri/research-links/pkg/config"
	"go.uber.org/zap"
)

const importDoc = `export:
  - slug: paper
    target: https://example.com/paper
    title: Paper
    tags: ml,graphs
  - slug: orcid-12
    target: https://doi.org/10.1/x
    title: Journal article
  - slug: "bad slug"
    target: https://example.com
metadata:
  total: 3
  format: yaml
  source: all
`

func setupEnv(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("STORE_URL", "redis://"+mr.Addr())
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ORCID_ID", "")
	t.Setenv("OPENREVIEW_ID", "")
	return mr
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(app.New)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportExport(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "links.yml")
	require.NoError(t, os.WriteFile(file, []byte(importDoc), 0o600))

	out, err := run(t, "import", "--file", file)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 of 3 links\n", out)

	out, err = run(t, "export", "--format", "csv", "--source", "orcid")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "orcid-12,https://doi.org/10.1/x,Journal article,,,orcid,0,false,"))

	dest := filepath.Join(dir, "out.json")
	out, err = run(t, "export", "--out", dest)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags": "ml,graphs"`)
	assert.Contains(t, string(data), `"total": 2`)

	_, err = run(t, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestImport_RequiresFile(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "import")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	mr := setupEnv(t)
	file := filepath.Join(t.TempDir(), "links.yaml")
	require.NoError(t, os.WriteFile(file, []byte(importDoc), 0o600))
	_, err := run(t, "import", "--file", file)
	require.NoError(t, err)
	require.NoError(t, mr.Set("count:paper", "5"))

	out, err := run(t, "stats", "--period", "week")
	require.NoError(t, err)
	assert.Contains(t, out, "Period: week")
	assert.Contains(t, out, "Links: 2\n")
	assert.Contains(t, out, "Clicks: 5 (avg 2.50 per link)")
	assert.Contains(t, out, "Tags: 2\n")
	assert.Contains(t, out, "paper")
}

func TestIngest(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "ingest")
	require.NoError(t, err)
	assert.Equal(t, "No sources configured\n", out)

	_, err = run(t, "ingest", "--source", "manual")
	assert.Error(t, err)
}

func TestBackup(t *testing.T) {
	setupEnv(t)

	var mu sync.Mutex
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath, gotBody = r.URL.Path, string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Setenv("S3_ENDPOINT", server.URL)
	t.Setenv("S3_BUCKET", "snapshots")
	t.Setenv("S3_ACCESS_KEY_ID", "test")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test")

	out, err := run(t, "backup")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, server.URL+"/snapshots/backups/research-export-"))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasPrefix(gotPath, "/snapshots/backups/research-export-"))
	assert.True(t, strings.HasSuffix(gotPath, ".json"))
	assert.Contains(t, gotBody, `"export": []`)
}

func TestBackup_RequiresBucket(t *testing.T) {
	setupEnv(t)
	t.Setenv("S3_BUCKET", "")

	_, err := run(t, "backup")
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "yaml", formatFromPath("dump.YML"))
	assert.Equal(t, "json", formatFromPath("dump.json"))
	assert.Equal(t, "json", formatFromPath("dump"))

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "backups/research-export-20250304T040607Z.json", backupKey(ts))
}

type failingStore struct{}

func (failingStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return "", errors.New("bucket gone")
}

func TestUploadBackup_StoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := app.New(&config.Config{StoreURL: "redis://" + mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, err = uploadBackup(context.Background(), a.Export, failingStore{})
	assert.ErrorContains(t, err, "upload backup: bucket gone")
}
