package openreview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api2.openreview.net"
	DefaultSiteURL = "https://openreview.net"
	userAgent      = "research-site/1.0"
	defaultVenue   = "OpenReview"
)

var submissionInvitations = []string{"/-/Submission", "/-/Blind_Submission", "/-/Paper", "/-/Proceedings"}

type Config struct {
	ID       string
	Username string
	Password string
	BaseURL  string
	SiteURL  string
}

// Client lists a profile's submissions from the OpenReview API v2.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

func (c *Client) Name() domain.Source { return domain.SourceOpenReview }

type note struct {
	ID          string                     `json:"id"`
	Invitation  string                     `json:"invitation"`
	Invitations []string                   `json:"invitations"`
	Content     map[string]json.RawMessage `json:"content"`
	CDate       int64                      `json:"cdate"`
	DDate       *int64                     `json:"ddate"`
}

// FetchWorks resolves the profile id, then lists its non-deleted submissions.
// A failed login falls back to anonymous access.
func (c *Client) FetchWorks(ctx context.Context) ([]domain.ExternalWork, error) {
	if c.cfg.ID == "" {
		return nil, nil
	}

	token := ""
	if c.cfg.Username != "" && c.cfg.Password != "" {
		t, err := c.login(ctx)
		if err != nil {
			c.logger.Warn("openreview login failed, continuing unauthenticated", zap.Error(err))
		}
		token = t
	}

	var profiles struct {
		Profiles []struct {
			ID string `json:"id"`
		} `json:"profiles"`
	}
	if err := c.get(ctx, "/profiles?id="+url.QueryEscape(c.cfg.ID), token, &profiles); err != nil {
		return nil, fmt.Errorf("fetch openreview profile: %w", err)
	}
	if len(profiles.Profiles) == 0 {
		return nil, fmt.Errorf("no openreview profile for %q", c.cfg.ID)
	}
	profileID := profiles.Profiles[0].ID

	q := url.Values{}
	q.Set("content.authorids", profileID)
	q.Set("details", "replyCount,invitation")
	q.Set("sort", "cdate:desc")
	var notes struct {
		Notes []note `json:"notes"`
	}
	if err := c.get(ctx, "/notes?"+q.Encode(), token, &notes); err != nil {
		return nil, fmt.Errorf("fetch openreview notes: %w", err)
	}

	works := make([]domain.ExternalWork, 0, len(notes.Notes))
	for _, n := range notes.Notes {
		if n.DDate != nil || !isSubmission(n) {
			continue
		}
		works = append(works, c.toWork(n))
	}
	c.logger.Debug("openreview notes filtered",
		zap.Int("notes", len(notes.Notes)),
		zap.Int("submissions", len(works)),
	)
	return works, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"id": c.cfg.Username, "password": c.cfg.Password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: unexpected status %s", req.Method, req.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isSubmission(n note) bool {
	invitations := n.Invitations
	if n.Invitation != "" {
		invitations = append([]string{n.Invitation}, invitations...)
	}
	for _, inv := range invitations {
		for _, marker := range submissionInvitations {
			if strings.Contains(inv, marker) {
				return true
			}
		}
	}
	return contentValue(n.Content, "title") != "" &&
		contentValue(n.Content, "abstract") != "" &&
		(contentValue(n.Content, "pdf") != "" || contentValue(n.Content, "venue") != "")
}

func (c *Client) toWork(n note) domain.ExternalWork {
	target := c.cfg.SiteURL + "/forum?id=" + url.QueryEscape(n.ID)
	if contentValue(n.Content, "pdf") != "" {
		target = c.cfg.SiteURL + "/pdf?id=" + url.QueryEscape(n.ID)
	}

	venue := contentValue(n.Content, "venue")
	tag := venue
	if tag == "" {
		tag = defaultVenue
	}
	if venue == "" {
		venue = n.Invitation
		if venue == "" && len(n.Invitations) > 0 {
			venue = n.Invitations[0]
		}
	}

	w := domain.ExternalWork{
		Slug:        "openreview-" + n.ID,
		Target:      target,
		Title:       contentValue(n.Content, "title"),
		Description: contentValue(n.Content, "abstract"),
		Venue:       venue,
		Tags:        []string{tag},
	}
	if n.CDate > 0 {
		w.Date = time.UnixMilli(n.CDate).UTC()
	}
	return w
}

// contentValue unwraps a content field that is either a bare string or a
// {"value": "..."} object. Anything else reads as empty.
func contentValue(content map[string]json.RawMessage, key string) string {
	raw, ok := content[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var wrapped struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Value == nil {
		return ""
	}
	if err := json.Unmarshal(wrapped.Value, &s); err == nil {
		return s
	}
	return ""
}

var _ ports.WorkSource = (*Client)(nil)
