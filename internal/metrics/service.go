package metrics

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kazdan-gif/blog/internal/models"
	"github.com/kazdan-gif/blog/internal/store"
)

const topCombinations = 10

var hundred = decimal.NewFromInt(100)

// Service arma el reporte de tráfico de un upload. No guarda estado entre llamadas.
type Service struct{ log *slog.Logger }

func NewService(log *slog.Logger) *Service { return &Service{log: log} }

func (s *Service) Build(recs []models.OrderRecord) models.Report {
	var (
		channels = store.NewMemoryStore()
		sources  = store.NewMemoryStore()
		mediums  = store.NewMemoryStore()
		combos   = store.NewMemoryStore()
		emails   = store.NewMemoryStore()
		months   = store.NewMemoryStore()
		revenue  = decimal.Zero
	)
	for _, r := range recs {
		revenue = revenue.Add(r.TotalPrice)
		channels.Upsert(r.TotalPrice, string(r.Channel))
		sources.Upsert(r.TotalPrice, r.Source)
		mediums.Upsert(r.TotalPrice, r.Medium)
		combos.Upsert(r.TotalPrice, r.Source, r.Medium)
		if r.EmailCampaignID != "" {
			emails.Upsert(r.TotalPrice, r.EmailCampaignID)
		}
		if r.OrderMonth != "" {
			months.Upsert(r.TotalPrice, r.OrderMonth)
		}
	}

	total := len(recs)
	rep := models.Report{
		Summary: models.Summary{
			TotalOrders:   total,
			TotalRevenue:  revenue,
			AvgOrderValue: avg(revenue, total),
		},
		Channels:       byRevenue(toAggregates(channels.All(), total, revenue)),
		Sources:        byRevenue(toAggregates(sources.All(), total, revenue)),
		Mediums:        byRevenue(toAggregates(mediums.All(), total, revenue)),
		EmailCampaigns: byRevenue(toAggregates(emails.All(), total, revenue)),
		RowsAnalyzed:   total,
		RowsTotal:      total,
	}

	top := byRevenue(toAggregates(combos.All(), total, revenue))
	if len(top) > topCombinations {
		top = top[:topCombinations]
	}
	rep.Top10Combinations = top

	// YYYY-MM ordena cronológicamente como string
	rep.Monthly = toAggregates(months.All(), total, revenue)
	sort.SliceStable(rep.Monthly, func(i, j int) bool { return rep.Monthly[i].Key < rep.Monthly[j].Key })

	rep.Insights = Insights(rep)

	s.log.Debug("report built",
		slog.Int("orders", total),
		slog.Int("channels", len(rep.Channels)),
		slog.Int("sources", len(rep.Sources)),
		slog.Int("insights", len(rep.Insights)))
	return rep
}

func toAggregates(groups []store.Group, totalOrders int, totalRevenue decimal.Decimal) []models.Aggregate {
	out := make([]models.Aggregate, 0, len(groups))
	for _, g := range groups {
		a := models.Aggregate{
			OrderCount:    g.Orders,
			Revenue:       g.Revenue,
			AvgOrderValue: avg(g.Revenue, g.Orders),
		}
		if len(g.Keys) == 2 {
			a.Source, a.Medium = g.Keys[0], g.Keys[1]
			a.Key = g.Keys[0] + " / " + g.Keys[1]
		} else {
			a.Key = g.Keys[0]
		}
		if totalOrders > 0 {
			a.OrderPct = round2(float64(g.Orders) / float64(totalOrders) * 100)
		}
		if !totalRevenue.IsZero() {
			a.RevenuePct = g.Revenue.Mul(hundred).Div(totalRevenue).Round(2).InexactFloat64()
		}
		out = append(out, a)
	}
	return out
}

// byRevenue ordena de mayor a menor; los empates conservan el orden de llegada.
func byRevenue(aggs []models.Aggregate) []models.Aggregate {
	sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].Revenue.GreaterThan(aggs[j].Revenue) })
	return aggs
}

func avg(revenue decimal.Decimal, orders int) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(orders))).Round(2)
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
