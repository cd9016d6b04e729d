package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/trogers1052/market-radar/internal/models"
)

const defaultUserAgent = "market-radar/1.0 (news aggregation)"

// RSSCollector fetches an RSS 2.0 feed over HTTP.
type RSSCollector struct {
	name      string
	url       string
	client    *http.Client
	userAgent string
	maxItems  int
}

func NewRSSCollector(name, url string) *RSSCollector {
	return &RSSCollector{
		name:      name,
		url:       url,
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: defaultUserAgent,
		maxItems:  50,
	}
}

func (c *RSSCollector) Name() string { return c.name }

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

func (c *RSSCollector) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", c.name, err)
	}

	var items []models.NewsItem
	for _, entry := range feed.Channel.Items {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Source:    c.name,
			Title:     title,
			Link:      link,
			Published: strings.TrimSpace(entry.PubDate),
			Summary:   strings.TrimSpace(entry.Description),
		})
		if len(items) >= c.maxItems {
			break
		}
	}
	return items, nil
}
