package openreview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const notesFixture = `{"notes": [
  {
    "id": "abc",
    "invitations": ["ICLR.cc/2024/Conference/-/Submission"],
    "content": {"title": {"value": "Sparse Attention"}, "abstract": {"value": "We sparsify."}, "venue": {"value": "ICLR 2024"}, "pdf": {"value": "/pdf/abc.pdf"}},
    "cdate": 1700000000000
  },
  {
    "id": "old",
    "invitation": "NeurIPS.cc/2019/Conference/-/Blind_Submission",
    "content": {"title": "Legacy note", "abstract": "v1 style"},
    "cdate": 1560000000000
  },
  {
    "id": "comment",
    "invitations": ["ICLR.cc/2024/Conference/-/Official_Comment"],
    "content": {"title": {"value": "Re: reviewer 2"}},
    "cdate": 1700000001000
  },
  {
    "id": "byContent",
    "invitations": ["Workshop/-/Edit"],
    "content": {"title": {"value": "Workshop paper"}, "abstract": {"value": "abs"}, "venue": {"value": ""}, "pdf": {"value": "/pdf/x.pdf"}},
    "cdate": 1700000002000
  },
  {
    "id": "gone",
    "invitations": ["ICLR.cc/2024/Conference/-/Submission"],
    "content": {"title": {"value": "Withdrawn"}},
    "cdate": 1700000003000,
    "ddate": 1700000004000
  }
]}`

func newServer(t *testing.T, loginStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"id": "me@example.com", "password": "pw"}, body)
		if loginStatus != http.StatusOK {
			w.WriteHeader(loginStatus)
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("GET /profiles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "research-site/1.0", r.Header.Get("User-Agent"))
		if r.URL.Query().Get("id") != "~Jane_Doe1" {
			_, _ = w.Write([]byte(`{"profiles":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"profiles":[{"id":"~Jane_Doe1"}]}`))
	})
	mux.HandleFunc("GET /notes", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "~Jane_Doe1", q.Get("content.authorids"))
		assert.Equal(t, "replyCount,invitation", q.Get("details"))
		assert.Equal(t, "cdate:desc", q.Get("sort"))
		if loginStatus == http.StatusOK {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		} else {
			assert.Empty(t, r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(notesFixture))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchWorks(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := newServer(t, status)
			c := NewClient(Config{
				ID:       "~Jane_Doe1",
				Username: "me@example.com",
				Password: "pw",
				BaseURL:  srv.URL,
				SiteURL:  "https://openreview.net",
			}, srv.Client(), zap.NewNop())

			works, err := c.FetchWorks(context.Background())
			require.NoError(t, err)

			slugs := []string{}
			for _, w := range works {
				slugs = append(slugs, w.Slug)
			}
			assert.Equal(t, []string{"openreview-abc", "openreview-old", "openreview-byContent"}, slugs)

			abc := works[0]
			assert.Equal(t, "https://openreview.net/pdf?id=abc", abc.Target)
			assert.Equal(t, "Sparse Attention", abc.Title)
			assert.Equal(t, "We sparsify.", abc.Description)
			assert.Equal(t, []string{"ICLR 2024"}, abc.Tags)
			assert.Equal(t, "ICLR 2024", abc.Venue)
			assert.Equal(t, time.UnixMilli(1700000000000).UTC(), abc.Date)

			old := works[1]
			assert.Equal(t, "https://openreview.net/forum?id=old", old.Target)
			assert.Equal(t, "Legacy note", old.Title)
			assert.Equal(t, []string{"OpenReview"}, old.Tags)
			assert.Equal(t, "NeurIPS.cc/2019/Conference/-/Blind_Submission", old.Venue)

			assert.Equal(t, []string{"OpenReview"}, works[2].Tags)
		})
	}
}

func TestClient_NoProfile(t *testing.T) {
	srv := newServer(t, http.StatusOK)
	c := NewClient(Config{ID: "~Nobody1", BaseURL: srv.URL}, srv.Client(), zap.NewNop())

	_, err := c.FetchWorks(context.Background())
	assert.ErrorContains(t, err, "no openreview profile")

	works, err := NewClient(Config{BaseURL: srv.URL}, srv.Client(), zap.NewNop()).FetchWorks(context.Background())
	require.NoError(t, err)
	assert.Nil(t, works)
}

func TestContentValue(t *testing.T) {
	content := map[string]json.RawMessage{
		"bare":    json.RawMessage(`"plain"`),
		"wrapped": json.RawMessage(`{"value":"inner"}`),
		"list":    json.RawMessage(`{"value":["a","b"]}`),
		"number":  json.RawMessage(`3`),
		"empty":   json.RawMessage(`{}`),
	}

	tests := []struct {
		key      string
		expected string
	}{
		{key: "bare", expected: "plain"},
		{key: "wrapped", expected: "inner"},
		{key: "list", expected: ""},
		{key: "number", expected: ""},
		{key: "empty", expected: ""},
		{key: "missing", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, contentValue(content, tt.key))
		})
	}
}
