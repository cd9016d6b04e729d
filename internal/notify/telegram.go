package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/trogers1052/market-radar/internal/models"
	"github.com/trogers1052/market-radar/internal/signals"
)

const (
	telegramBaseURL  = "https://api.telegram.org"
	telegramMaxChars = 4096
)

// TelegramNotifier sends messages through the Telegram Bot API.
type TelegramNotifier struct {
	baseURL    string
	token      string
	chatID     string
	silent     bool
	client     *http.Client
	retries    int
	retryDelay time.Duration
}

// Options tunes delivery behavior. Zero values fall back to sane defaults.
type Options struct {
	Silent     bool
	Retries    int
	RetryDelay time.Duration
}

func NewTelegramNotifier(token, chatID string, opts Options) *TelegramNotifier {
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return &TelegramNotifier{
		baseURL:    telegramBaseURL,
		token:      token,
		chatID:     chatID,
		silent:     opts.Silent,
		client:     &http.Client{Timeout: 10 * time.Second},
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
	}
}

func (n *TelegramNotifier) NotifyNews(ctx context.Context, item *models.NewsItem) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📣 <b>%s</b> — impact %d\n", item.Ticker, item.ImpactScore)
	fmt.Fprintf(&b, "%s\n", htmlEscape(item.Title))
	if item.GapPct != nil {
		fmt.Fprintf(&b, "Gap: %+.1f%%\n", *item.GapPct)
	}
	if item.VolSpike != nil {
		fmt.Fprintf(&b, "Volume: %.1fx average\n", *item.VolSpike)
	}
	fmt.Fprintf(&b, "<i>%s</i>\n%s", htmlEscape(item.Source), item.Link)
	return n.send(ctx, b.String())
}

func (n *TelegramNotifier) NotifySignal(ctx context.Context, signal *models.TradingSignal) error {
	return n.send(ctx, signals.FormatHTML(signal))
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// send posts one message, retrying transient failures with a short backoff.
// Messages over the API limit are truncated rather than rejected.
func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	if len(text) > telegramMaxChars {
		text = text[:telegramMaxChars-3] + "..."
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":              n.chatID,
		"text":                 text,
		"parse_mode":           "HTML",
		"disable_notification": n.silent,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	var lastErr error
	for attempt := 0; attempt < n.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * n.retryDelay):
			}
		}

		lastErr = n.post(ctx, endpoint, payload)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", n.retries, lastErr)
}

func (n *TelegramNotifier) post(ctx context.Context, endpoint string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	var tr telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !tr.OK {
		return fmt.Errorf("telegram api error: %s", tr.Description)
	}
	return nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
