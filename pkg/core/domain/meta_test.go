package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestMetadataHash(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)
	m := Metadata{
		Title:      "Paper",
		Tags:       []string{"ml", "nlp"},
		Permanent:  true,
		CreatedAt:  &created,
		StartDate:  "2024-09",
		GithubRepo: "me/paper",
	}

	h := m.ToHash()
	assert.Equal(t, map[string]string{
		"title":      "Paper",
		"tags":       "ml,nlp",
		"permanent":  "1",
		"createdAt":  "2025-01-02T03:04:05.000000006Z",
		"startDate":  "2024-09",
		"githubRepo": "me/paper",
	}, h)

	if diff := cmp.Diff(m, MetadataFromHash(h)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataFromHash_BadTimestamp(t *testing.T) {
	m := MetadataFromHash(map[string]string{"createdAt": "yesterday", "permanent": "true"})
	assert.Nil(t, m.CreatedAt)
	assert.False(t, m.Permanent)
	assert.Equal(t, []string{}, m.Tags)
}

func TestMetadataPatch_Apply(t *testing.T) {
	m := Metadata{Title: "Old", Description: "Keep", Tags: []string{"a"}}
	title := "New"
	tags := []string{"b", "b", "c"}
	perm := true

	MetadataPatch{Title: &title, Tags: &tags, Permanent: &perm}.Apply(&m)

	assert.Equal(t, Metadata{Title: "New", Description: "Keep", Tags: []string{"b", "c"}, Permanent: true}, m)
}

func TestExportEntry(t *testing.T) {
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	link := Link{
		Slug:   "orcid-9",
		Target: "https://doi.org/10.1/x",
		Clicks: 7,
		Metadata: Metadata{
			Title:     "Work",
			Tags:      []string{"Nature"},
			CreatedAt: &created,
		},
	}

	e := ExportEntryFromLink(link)
	assert.Equal(t, SourceORCID, e.Source)
	assert.Equal(t, "Nature", e.Tags)
	assert.Equal(t, "2025-05-01T00:00:00Z", e.CreatedAt)

	back := e.ToLink()
	assert.Zero(t, back.Clicks)
	link.Clicks = 0
	if diff := cmp.Diff(link, back); diff != "" {
		t.Errorf("ToLink mismatch (-want +got):\n%s", diff)
	}
}
