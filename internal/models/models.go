package models

import "github.com/shopspring/decimal"

// NotSet marca un campo UTM ausente o mal formado.
const NotSet = "(not set)"

type Channel string

const (
	ChannelPaidSearch     Channel = "Paid Search"
	ChannelOrganicSearch  Channel = "Organic Search"
	ChannelDirect         Channel = "Direct"
	ChannelEmailMarketing Channel = "Email Marketing"
	ChannelReferral       Channel = "Referral"
	ChannelSocial         Channel = "Social"
	ChannelOther          Channel = "Other"
)

// OrderRecord es una fila del archivo subido ya normalizada.
type OrderRecord struct {
	OrderID         string
	TotalPrice      decimal.Decimal
	OrderMonth      string // YYYY-MM, vacío si no hay fecha
	Source          string
	Medium          string
	Campaign        string
	Channel         Channel
	EmailCampaignID string // vacío si no aplica
}

type Aggregate struct {
	Key           string          `json:"key"`
	Source        string          `json:"source,omitempty"`
	Medium        string          `json:"medium,omitempty"`
	OrderCount    int             `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	OrderPct      float64         `json:"order_pct"`
	RevenuePct    float64         `json:"revenue_pct"`
}

type Summary struct {
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

type Insight struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Report struct {
	Summary           Summary     `json:"summary"`
	Channels          []Aggregate `json:"channels"`
	Sources           []Aggregate `json:"sources"`
	Mediums           []Aggregate `json:"mediums"`
	Top10Combinations []Aggregate `json:"top_10_combinations"`
	EmailCampaigns    []Aggregate `json:"email_campaigns"`
	Monthly           []Aggregate `json:"monthly"`
	Insights          []Insight   `json:"insights"`
	Warning           string      `json:"warning,omitempty"`
	RowsAnalyzed      int         `json:"rows_analyzed"`
	RowsTotal         int         `json:"rows_total"`
}
