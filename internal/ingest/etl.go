package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kazdan-gif/blog/internal/config"
	"github.com/kazdan-gif/blog/internal/models"
	"github.com/kazdan-gif/blog/internal/traffic"
)

const DefaultMaxRows = 100_000

// precios fuera de este rango se tratan como ilegibles
const (
	maxPriceExponent = 12
	maxPriceScale    = 30
)

var (
	requiredColumns = []string{"traffic_source", "order_total_price", "order_id"}
	dateColumns     = []string{"order_date", "created_at"}
	numericColumns  = map[string]struct{}{"order_total_price": {}, "order_date": {}, "created_at": {}}

	maxPrice = decimal.New(1, maxPriceExponent)
)

// ETL convierte un archivo subido en pedidos normalizados.
type ETL struct {
	maxRows    int
	unzipLimit int64
	log        *slog.Logger
}

func NewETL(log *slog.Logger, cfg config.Config) *ETL {
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &ETL{maxRows: maxRows, unzipLimit: cfg.UnzipSizeLimit, log: log}
}

type Batch struct {
	Records []models.OrderRecord
	Total   int    // filas con datos antes de truncar
	Warning string // no vacío si se truncó
}

func (e *ETL) Run(filename string, r io.Reader) (Batch, error) {
	header, rows, err := decode(filename, r, e.unzipLimit)
	if err != nil {
		return Batch{}, err
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return Batch{}, &MissingColumnsError{Missing: missing}
	}

	b := Batch{Total: len(rows)}
	if len(rows) > e.maxRows {
		rows = rows[:e.maxRows]
		b.Warning = fmt.Sprintf("File has %d rows; only the first %d were analyzed.", b.Total, e.maxRows)
		e.log.Warn("row limit exceeded", slog.String("file", filename), slog.Int("rows", b.Total), slog.Int("max_rows", e.maxRows))
	}

	b.Records = make([]models.OrderRecord, 0, len(rows))
	for _, row := range rows {
		b.Records = append(b.Records, toRecord(row))
	}
	e.log.Info("upload parsed", slog.String("file", filename), slog.Int("records", len(b.Records)))
	return b, nil
}

func missingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var out []string
	for _, c := range requiredColumns {
		if _, ok := have[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func toRecord(row Row) models.OrderRecord {
	raw := str(row["traffic_source"])
	u := traffic.ParseSource(raw)
	rec := models.OrderRecord{
		OrderID:         str(row["order_id"]),
		TotalPrice:      price(row["order_total_price"]),
		Source:          u.Source,
		Medium:          u.Medium,
		Campaign:        u.Campaign,
		Channel:         traffic.ClassifyChannel(u.Source, u.Medium),
		EmailCampaignID: traffic.EmailCampaignID(raw),
	}
	for _, c := range dateColumns {
		if m, ok := traffic.MonthKey(row[c]); ok {
			rec.OrderMonth = m
			break
		}
	}
	return rec
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

// price tolera símbolos de moneda y separadores de miles; lo ilegible,
// no finito o desmesurado vale 0.
func price(v any) decimal.Decimal {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return bounded(decimal.NewFromFloat(x))
	case string:
		s := strings.Map(func(r rune) rune {
			switch r {
			case '$', '€', '£', ',', ' ':
				return -1
			}
			return r
		}, x)
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return bounded(d)
	}
	return decimal.Zero
}

// bounded mira el exponente antes de comparar: comparar con un exponente
// enorme obliga a decimal a reescalar a un big.Int gigante.
func bounded(d decimal.Decimal) decimal.Decimal {
	if e := d.Exponent(); e < -maxPriceScale || e > maxPriceExponent {
		return decimal.Zero
	}
	if d.Abs().GreaterThanOrEqual(maxPrice) {
		return decimal.Zero
	}
	// los valores crudos de hojas de cálculo traen ruido de coma flotante
	return d.Round(4)
}
