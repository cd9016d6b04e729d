package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/market-radar/internal/models"
)

func captureServer(t *testing.T) (*httptest.Server, *[]map[string]interface{}) {
	t.Helper()
	var requests []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, body)
		w.Write([]byte(`{"ok":true}`))
	}))
	return server, &requests
}

func bodyText(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	text, ok := body["text"].(string)
	require.True(t, ok, "text field should be a string")
	return text
}

func TestTelegramNotifySignal(t *testing.T) {
	server, requests := captureServer(t)
	defer server.Close()

	n := NewTelegramNotifier("test-token", "12345", Options{})
	n.baseURL = server.URL

	sig := &models.TradingSignal{
		Ticker:          "LCFY",
		SignalType:      models.SignalTypeBuy,
		Confidence:      65.5,
		CurrentPrice:    7.69,
		EntryPrice:      7.73,
		StopLoss:        7.46,
		TakeProfit1:     8.26,
		TakeProfit2:     8.53,
		TakeProfit3:     8.80,
		RiskRewardRatio: 2.0,
		Strategy:        models.StrategyMomentum,
		Timeframe:       models.TimeframeIntraday,
	}

	require.NoError(t, n.NotifySignal(context.Background(), sig))
	require.Len(t, *requests, 1)

	body := (*requests)[0]
	assert.Equal(t, "12345", body["chat_id"])
	assert.Equal(t, "HTML", body["parse_mode"])
	assert.Equal(t, false, body["disable_notification"])
	assert.Contains(t, bodyText(t, body), "BUY LCFY")
}

func TestTelegramNotifyNewsEscapesHTML(t *testing.T) {
	server, requests := captureServer(t)
	defer server.Close()

	n := NewTelegramNotifier("test-token", "12345", Options{Silent: true})
	n.baseURL = server.URL

	item := &models.NewsItem{
		Ticker:      "ACME",
		Title:       "Deal <signed> & done",
		Source:      "PR Newswire",
		Link:        "https://example.com/deal",
		ImpactScore: 75,
	}
	require.NoError(t, n.NotifyNews(context.Background(), item))

	body := (*requests)[0]
	assert.Equal(t, true, body["disable_notification"])

	text := bodyText(t, body)
	assert.Contains(t, text, "&lt;signed&gt; &amp; done")
	assert.False(t, strings.Contains(text, "<signed>"))
}

func TestTelegramRetriesOnFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.Write([]byte(`{"ok":false,"description":"flood control"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier("test-token", "12345", Options{RetryDelay: time.Millisecond})
	n.baseURL = server.URL

	err := n.send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTelegramGivesUpAfterRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"ok":false,"description":"flood control"}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier("test-token", "12345", Options{Retries: 2, RetryDelay: time.Millisecond})
	n.baseURL = server.URL

	err := n.send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flood control")
	assert.Equal(t, 2, calls)
}

func TestTelegramTruncatesLongMessages(t *testing.T) {
	server, requests := captureServer(t)
	defer server.Close()

	n := NewTelegramNotifier("test-token", "12345", Options{})
	n.baseURL = server.URL

	require.NoError(t, n.send(context.Background(), strings.Repeat("a", 5000)))
	text := bodyText(t, (*requests)[0])
	assert.Len(t, text, telegramMaxChars)
	assert.True(t, strings.HasSuffix(text, "..."))
}
