package metrics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kazdan-gif/blog/internal/models"
)

const (
	maxInsights    = 5
	minOrdersNoted = 10
)

var (
	highValueFactor = decimal.RequireFromString("1.2")
	lowValueFactor  = decimal.RequireFromString("0.8")

	aiSearchSources = []string{"chatgpt", "openai", "perplexity", "claude", "gemini", "copilot"}
)

type insightRule struct {
	kind string
	eval func(rep models.Report) (string, bool)
}

// se evalúan en este orden, cada una por separado
var insightRules = []insightRule{
	{"top_channel", topChannel},
	{"high_value_channel", highValueChannel},
	{"low_value_channel", lowValueChannel},
	{"top_sources", topSources},
	{"ai_search", aiSearch},
	{"email_marketing", emailMarketing},
}

// Insights espera canales y fuentes ya ordenados por ingreso.
func Insights(rep models.Report) []models.Insight {
	out := []models.Insight{}
	for _, r := range insightRules {
		if len(out) == maxInsights {
			break
		}
		if text, ok := r.eval(rep); ok {
			out = append(out, models.Insight{Type: r.kind, Text: text})
		}
	}
	return out
}

func topChannel(rep models.Report) (string, bool) {
	if len(rep.Channels) == 0 {
		return "", false
	}
	c := rep.Channels[0]
	return fmt.Sprintf("%s drives the most revenue: %s (%.1f%% of total) from %d orders.",
		c.Key, money(c.Revenue), c.RevenuePct, c.OrderCount), true
}

func highValueChannel(rep models.Report) (string, bool) {
	limit := rep.Summary.AvgOrderValue.Mul(highValueFactor)
	for _, c := range rep.Channels {
		if c.AvgOrderValue.GreaterThan(limit) {
			return fmt.Sprintf("%s orders average %s, well above the overall average of %s.",
				c.Key, money(c.AvgOrderValue), money(rep.Summary.AvgOrderValue)), true
		}
	}
	return "", false
}

func lowValueChannel(rep models.Report) (string, bool) {
	limit := rep.Summary.AvgOrderValue.Mul(lowValueFactor)
	var low *models.Aggregate
	for i, c := range rep.Channels {
		if c.OrderCount < minOrdersNoted || !c.AvgOrderValue.LessThan(limit) {
			continue
		}
		if low == nil || c.AvgOrderValue.LessThan(low.AvgOrderValue) {
			low = &rep.Channels[i]
		}
	}
	if low == nil {
		return "", false
	}
	return fmt.Sprintf("%s orders average only %s across %d orders, below the overall average of %s.",
		low.Key, money(low.AvgOrderValue), low.OrderCount, money(rep.Summary.AvgOrderValue)), true
}

func topSources(rep models.Report) (string, bool) {
	if len(rep.Sources) < 3 {
		return "", false
	}
	parts := make([]string, 0, 3)
	for _, s := range rep.Sources[:3] {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Key, money(s.Revenue)))
	}
	return "Top sources by revenue: " + strings.Join(parts, ", ") + ".", true
}

func aiSearch(rep models.Report) (string, bool) {
	for _, s := range rep.Sources {
		name := strings.ToLower(s.Key)
		for _, ai := range aiSearchSources {
			if strings.Contains(name, ai) {
				return fmt.Sprintf("AI search is sending buyers: %s brought %d orders worth %s.",
					s.Key, s.OrderCount, money(s.Revenue)), true
			}
		}
	}
	return "", false
}

func emailMarketing(rep models.Report) (string, bool) {
	for _, c := range rep.Channels {
		if c.Key == string(models.ChannelEmailMarketing) && c.OrderCount >= minOrdersNoted {
			return fmt.Sprintf("Email marketing generated %s from %d orders (%.1f%% of revenue), averaging %s per order.",
				money(c.Revenue), c.OrderCount, c.RevenuePct, money(c.AvgOrderValue)), true
		}
	}
	return "", false
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }
