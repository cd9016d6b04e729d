package collector

import (
	"context"

	"github.com/trogers1052/market-radar/internal/models"
)

// Collector fetches a batch of articles from one news source. Fetch is
// called once per poll cycle; an error means the whole source failed this
// cycle, partial results are returned without error.
type Collector interface {
	Name() string
	Fetch(ctx context.Context) ([]models.NewsItem, error)
}
