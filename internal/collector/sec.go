package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trogers1052/market-radar/internal/models"
)

const (
	secSourceName = "SEC EDGAR"
	secBaseURL    = "https://www.sec.gov/cgi-bin/browse-edgar"
)

// SECCollector fetches the latest filings of selected form types from the
// EDGAR current-events Atom feed. SEC requires a descriptive User-Agent with
// contact info or it throttles the client.
type SECCollector struct {
	baseURL   string
	formTypes []string
	client    *http.Client
	userAgent string
	maxItems  int
}

func NewSECCollector(formTypes []string, userAgent string) *SECCollector {
	if len(formTypes) == 0 {
		formTypes = []string{"8-K"}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &SECCollector{
		baseURL:   secBaseURL,
		formTypes: formTypes,
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: userAgent,
		maxItems:  40,
	}
}

func (c *SECCollector) Name() string { return secSourceName }

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Updated string `xml:"updated"`
	Summary string `xml:"summary"`
	Link    struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Category struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

// Fetch pulls one feed per configured form type and merges the results.
// A failing form type fails the whole fetch; the poll loop retries next
// cycle.
func (c *SECCollector) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	for _, formType := range c.formTypes {
		batch, err := c.fetchForm(ctx, formType)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

func (c *SECCollector) fetchForm(ctx context.Context, formType string) ([]models.NewsItem, error) {
	endpoint := fmt.Sprintf("%s?action=getcurrent&type=%s&count=%d&output=atom",
		c.baseURL, url.QueryEscape(formType), c.maxItems)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch edgar %s: %w", formType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edgar returned status %d for %s", resp.StatusCode, formType)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse edgar feed: %w", err)
	}

	var items []models.NewsItem
	for _, entry := range feed.Entries {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link.Href)
		if title == "" || link == "" {
			continue
		}
		// Feed sometimes mixes in other forms; keep only what was asked for.
		if entry.Category.Term != "" && !strings.EqualFold(entry.Category.Term, formType) {
			continue
		}
		items = append(items, models.NewsItem{
			Source:    secSourceName,
			Title:     title,
			Link:      link,
			Published: strings.TrimSpace(entry.Updated),
			Summary:   strings.TrimSpace(entry.Summary),
		})
	}
	return items, nil
}
