package validation

import (
	"fmt"
	"strings"

	"github.com/trogers1052/market-radar/internal/models"
)

// Result is the outcome of checking a news item against live market data.
type Result struct {
	Validated bool
	Reason    string
	GapPct    *float64
	VolSpike  *float64
}

// Validator decides whether the market actually reacted to a story. Either
// threshold passing is enough; both metrics are reported when computable.
type Validator struct {
	minGapPct   float64
	minVolSpike float64
}

func New(minGapPct, minVolSpike float64) *Validator {
	return &Validator{minGapPct: minGapPct, minVolSpike: minVolSpike}
}

// GapPct returns the percent move from previous close to current price.
func GapPct(price, prevClose float64) float64 {
	return (price - prevClose) / prevClose * 100
}

// VolSpike returns today's volume as a multiple of the ten-day average.
func VolSpike(volume, avgVolume float64) float64 {
	return volume / avgVolume
}

// Validate checks the snapshot against the configured thresholds. A nil or
// unpriced snapshot fails with a reason rather than an error; metrics that
// cannot be computed stay nil and are never defaulted.
func (v *Validator) Validate(ticker string, snap *models.MarketSnapshot) Result {
	if ticker == "" {
		return Result{Reason: "no-ticker"}
	}
	if snap == nil || snap.Price == nil || snap.PrevClose == nil || *snap.PrevClose == 0 {
		return Result{Reason: "no-price-or-prev-close"}
	}

	res := Result{}
	gap := GapPct(*snap.Price, *snap.PrevClose)
	res.GapPct = &gap

	if snap.Volume != nil && snap.AvgVolume10d != nil && *snap.AvgVolume10d > 0 {
		spike := VolSpike(*snap.Volume, *snap.AvgVolume10d)
		res.VolSpike = &spike
	}

	gapHit := gap >= v.minGapPct || gap <= -v.minGapPct
	volHit := res.VolSpike != nil && *res.VolSpike >= v.minVolSpike
	res.Validated = gapHit || volHit

	var parts []string
	parts = append(parts, fmt.Sprintf("gap=%.2f%%", gap))
	if res.VolSpike != nil {
		parts = append(parts, fmt.Sprintf("vol_spike=%.2fx", *res.VolSpike))
	} else {
		parts = append(parts, "vol_spike=n/a")
	}
	if res.Validated {
		var hits []string
		if gapHit {
			hits = append(hits, "gap")
		}
		if volHit {
			hits = append(hits, "volume")
		}
		parts = append(parts, "passed="+strings.Join(hits, "+"))
	} else {
		parts = append(parts, "below-thresholds")
	}
	res.Reason = strings.Join(parts, " ")

	return res
}
