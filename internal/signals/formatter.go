package signals

import (
	"fmt"
	"strings"

	"github.com/trogers1052/market-radar/internal/models"
)

// FormatHTML renders a signal as Telegram-flavored HTML.
func FormatHTML(sig *models.TradingSignal) string {
	var b strings.Builder

	emoji := "🟢"
	if sig.SignalType == models.SignalTypeSell {
		emoji = "🔴"
	}

	fmt.Fprintf(&b, "%s <b>%s %s</b> — confidence %.0f/100\n", emoji, sig.SignalType, sig.Ticker, sig.Confidence)
	fmt.Fprintf(&b, "Strategy: %s (%s)\n\n", sig.Strategy, sig.Timeframe)
	fmt.Fprintf(&b, "Current:  $%.2f\n", sig.CurrentPrice)
	fmt.Fprintf(&b, "Entry:    $%.2f\n", sig.EntryPrice)
	fmt.Fprintf(&b, "Stop:     $%.2f (%.1f%% risk)\n", sig.StopLoss, sig.RiskAmountPct)
	fmt.Fprintf(&b, "Target 1: $%.2f\n", sig.TakeProfit1)
	fmt.Fprintf(&b, "Target 2: $%.2f\n", sig.TakeProfit2)
	fmt.Fprintf(&b, "Target 3: $%.2f\n", sig.TakeProfit3)
	fmt.Fprintf(&b, "R/R: %.1f:1\n", sig.RiskRewardRatio)

	if sig.GapPct != nil {
		fmt.Fprintf(&b, "Gap: %+.1f%%\n", *sig.GapPct)
	}
	if sig.VolumeSpikeRatio != nil {
		fmt.Fprintf(&b, "Volume: %.1fx average\n", *sig.VolumeSpikeRatio)
	}
	if sig.Headline != "" {
		fmt.Fprintf(&b, "\n📰 %s", htmlEscape(sig.Headline))
		if sig.NewsSource != "" {
			fmt.Fprintf(&b, " <i>(%s, impact %d)</i>", htmlEscape(sig.NewsSource), sig.ImpactScore)
		}
	}

	return b.String()
}

// FormatCompact renders a one-line summary for log output.
func FormatCompact(sig *models.TradingSignal) string {
	return fmt.Sprintf("%s %s conf=%.0f entry=%.2f stop=%.2f tp1=%.2f rr=%.1f [%s]",
		sig.SignalType, sig.Ticker, sig.Confidence,
		sig.EntryPrice, sig.StopLoss, sig.TakeProfit1,
		sig.RiskRewardRatio, sig.Strategy)
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
