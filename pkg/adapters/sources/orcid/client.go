package orcid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wadjakorntonsri/research-links/pkg/core/domain"
	"github.com/wadjakorntonsri/research-links/pkg/ports"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultBaseURL  = "https://pub.orcid.org/v3.0"
	DefaultTokenURL = "https://orcid.org/oauth/token"
	profileURL      = "https://orcid.org/"
)

type Config struct {
	ID           string
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

// Client reads public works from the ORCID API. When client credentials are
// configured requests carry a /read-public token.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) Name() domain.Source { return domain.SourceORCID }

type value struct {
	Value string `json:"value"`
}

type externalID struct {
	Type string `json:"external-id-type"`
	URL  *value `json:"external-id-url"`
}

type publicationDate struct {
	Year  *value `json:"year"`
	Month *value `json:"month"`
	Day   *value `json:"day"`
}

type workSummary struct {
	PutCode int64 `json:"put-code"`
	Title   *struct {
		Title *value `json:"title"`
	} `json:"title"`
	JournalTitle     *value           `json:"journal-title"`
	ShortDescription string           `json:"short-description"`
	PublicationDate  *publicationDate `json:"publication-date"`
	URL              *value           `json:"url"`
	ExternalIDs      *struct {
		ExternalID []externalID `json:"external-id"`
	} `json:"external-ids"`
}

type worksResponse struct {
	Group []struct {
		WorkSummary []workSummary `json:"work-summary"`
	} `json:"group"`
}

// FetchWorks returns the first summary of every work group. An unset ORCID id
// yields no works.
func (c *Client) FetchWorks(ctx context.Context) ([]domain.ExternalWork, error) {
	if c.cfg.ID == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/"+c.cfg.ID+"/works", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch orcid works: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch orcid works: unexpected status %s", resp.Status)
	}

	var body worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode orcid works: %w", err)
	}

	works := make([]domain.ExternalWork, 0, len(body.Group))
	for _, g := range body.Group {
		if len(g.WorkSummary) == 0 {
			continue
		}
		works = append(works, c.toWork(g.WorkSummary[0]))
	}
	return works, nil
}

func (c *Client) client(ctx context.Context) *http.Client {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return c.httpClient
	}
	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.TokenURL,
		Scopes:       []string{"/read-public"},
	}
	return cc.Client(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
}

func (c *Client) toWork(s workSummary) domain.ExternalWork {
	w := domain.ExternalWork{
		Slug:        "orcid-" + strconv.FormatInt(s.PutCode, 10),
		Target:      profileURL + c.cfg.ID,
		Description: s.ShortDescription,
	}
	if s.Title != nil && s.Title.Title != nil {
		w.Title = s.Title.Title.Value
	}
	if s.JournalTitle != nil && s.JournalTitle.Value != "" {
		w.Venue = s.JournalTitle.Value
		w.Tags = []string{s.JournalTitle.Value}
		if w.Description == "" {
			w.Description = s.JournalTitle.Value
		}
	}

	if s.URL != nil && s.URL.Value != "" {
		w.Target = s.URL.Value
	}
	if s.ExternalIDs != nil {
		for _, id := range s.ExternalIDs.ExternalID {
			if strings.EqualFold(id.Type, "doi") && id.URL != nil && id.URL.Value != "" {
				w.Target = id.URL.Value
				break
			}
		}
	}

	w.StartDate, w.Date = publishedOn(s.PublicationDate)
	return w
}

// publishedOn renders YYYY[-MM[-DD]] and the matching time for ordering.
func publishedOn(d *publicationDate) (string, time.Time) {
	if d == nil || d.Year == nil || d.Year.Value == "" {
		return "", time.Time{}
	}
	year, err := strconv.Atoi(d.Year.Value)
	if err != nil {
		return "", time.Time{}
	}
	parts := []string{d.Year.Value}
	month, day := 1, 1
	if d.Month != nil && d.Month.Value != "" {
		if m, err := strconv.Atoi(d.Month.Value); err == nil {
			month = m
			parts = append(parts, fmt.Sprintf("%02d", m))
			if d.Day != nil && d.Day.Value != "" {
				if dd, err := strconv.Atoi(d.Day.Value); err == nil {
					day = dd
					parts = append(parts, fmt.Sprintf("%02d", dd))
				}
			}
		}
	}
	return strings.Join(parts, "-"), time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

var _ ports.WorkSource = (*Client)(nil)
