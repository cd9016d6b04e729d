package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/market-radar/internal/models"
)

// SaveNewsEvent inserts a processed news item. Re-saving the same UID is a
// no-op: the pipeline deduplicates upstream, the constraint is a backstop.
func (db *DB) SaveNewsEvent(n *models.NewsItem) error {
	query := `
		INSERT INTO news_events (
			uid, source, title, link, published, summary,
			ticker, impact_score, impact_reason,
			gap_pct, vol_spike, validated, validation_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (uid) DO NOTHING
	`
	now := time.Now()
	_, err := db.conn.Exec(query,
		n.UID, n.Source, n.Title, n.Link, nullString(n.Published), nullString(n.Summary),
		nullString(n.Ticker), n.ImpactScore, nullString(n.ImpactReason),
		nullFloat(n.GapPct), nullFloat(n.VolSpike), n.Validated, nullString(n.ValidationReason), now,
	)
	if err != nil {
		return fmt.Errorf("failed to save news event: %w", err)
	}
	n.CreatedAt = now
	return nil
}

// GetNewsEventByUID retrieves one news event
func (db *DB) GetNewsEventByUID(uid string) (*models.NewsItem, error) {
	query := `
		SELECT uid, source, title, link, published, summary,
		       ticker, impact_score, impact_reason,
		       gap_pct, vol_spike, validated, validation_reason, created_at
		FROM news_events
		WHERE uid = $1
	`
	n, err := scanNewsEvent(db.conn.QueryRow(query, uid))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("news event not found: %s", uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get news event: %w", err)
	}
	return n, nil
}

// GetRecentNewsEvents retrieves the most recent events, newest first
func (db *DB) GetRecentNewsEvents(limit int) ([]*models.NewsItem, error) {
	query := `
		SELECT uid, source, title, link, published, summary,
		       ticker, impact_score, impact_reason,
		       gap_pct, vol_spike, validated, validation_reason, created_at
		FROM news_events
		ORDER BY created_at DESC
		LIMIT $1
	`
	return db.scanNewsEvents(db.conn.Query(query, limit))
}

// GetValidatedNewsEvents retrieves recent events the market reacted to
func (db *DB) GetValidatedNewsEvents(limit int) ([]*models.NewsItem, error) {
	query := `
		SELECT uid, source, title, link, published, summary,
		       ticker, impact_score, impact_reason,
		       gap_pct, vol_spike, validated, validation_reason, created_at
		FROM news_events
		WHERE validated = true
		ORDER BY created_at DESC
		LIMIT $1
	`
	return db.scanNewsEvents(db.conn.Query(query, limit))
}

// GetNewsEventsByTicker retrieves recent events for one ticker
func (db *DB) GetNewsEventsByTicker(ticker string, limit int) ([]*models.NewsItem, error) {
	query := `
		SELECT uid, source, title, link, published, summary,
		       ticker, impact_score, impact_reason,
		       gap_pct, vol_spike, validated, validation_reason, created_at
		FROM news_events
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return db.scanNewsEvents(db.conn.Query(query, ticker, limit))
}

func (db *DB) scanNewsEvents(rows *sql.Rows, err error) ([]*models.NewsItem, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query news events: %w", err)
	}
	defer rows.Close()

	var items []*models.NewsItem
	for rows.Next() {
		n, err := scanNewsEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news event: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNewsEvent(row rowScanner) (*models.NewsItem, error) {
	var n models.NewsItem
	var published, summary, ticker, impactReason, validationReason sql.NullString
	var gapPct, volSpike sql.NullFloat64

	err := row.Scan(
		&n.UID, &n.Source, &n.Title, &n.Link, &published, &summary,
		&ticker, &n.ImpactScore, &impactReason,
		&gapPct, &volSpike, &n.Validated, &validationReason, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if published.Valid {
		n.Published = published.String
	}
	if summary.Valid {
		n.Summary = summary.String
	}
	if ticker.Valid {
		n.Ticker = ticker.String
	}
	if impactReason.Valid {
		n.ImpactReason = impactReason.String
	}
	if validationReason.Valid {
		n.ValidationReason = validationReason.String
	}
	if gapPct.Valid {
		n.GapPct = &gapPct.Float64
	}
	if volSpike.Valid {
		n.VolSpike = &volSpike.Float64
	}

	return &n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
