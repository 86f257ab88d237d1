package ingest

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kazdan-gif/blog/internal/config"
	"github.com/kazdan-gif/blog/internal/models"
)

func newTestETL(maxRows int) *ETL {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewETL(log, config.Config{MaxRows: maxRows})
}

func TestRunCSVWithBOM(t *testing.T) {
	csv := "\ufefforder_id,Order_Total_Price ,traffic_source,order_date\n" +
		"1001,\"$1,250.50\",utmcsr=google|utmcmd=cpc|utmccn=spring,05/03/2024\n" +
		",,,\n" +
		"1002,abc,,\n"

	b, err := newTestETL(0).Run("orders.CSV", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, b.Records, 2)
	assert.Equal(t, 2, b.Total)
	assert.Empty(t, b.Warning)

	r := b.Records[0]
	assert.Equal(t, "1001", r.OrderID)
	assert.True(t, r.TotalPrice.Equal(decimal.RequireFromString("1250.50")), r.TotalPrice.String())
	assert.Equal(t, "google", r.Source)
	assert.Equal(t, models.ChannelPaidSearch, r.Channel)
	assert.Equal(t, "2024-03", r.OrderMonth)

	r = b.Records[1]
	assert.True(t, r.TotalPrice.IsZero())
	assert.Equal(t, models.NotSet, r.Source)
	assert.Equal(t, models.ChannelOther, r.Channel)
	assert.Empty(t, r.OrderMonth)
}

func TestRunMissingColumns(t *testing.T) {
	csv := "traffic_source,order_total_price\nutmcsr=google,10\n"
	_, err := newTestETL(0).Run("orders.csv", strings.NewReader(csv))
	require.Error(t, err)

	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"order_id"}, mc.Missing)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "order_id")
}

func TestRunUnsupportedFormat(t *testing.T) {
	_, err := newTestETL(0).Run("orders.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = newTestETL(0).Run("orders", strings.NewReader("a,b"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRunEmptyFile(t *testing.T) {
	_, err := newTestETL(0).Run("orders.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestRunReadError(t *testing.T) {
	_, err := newTestETL(0).Run("orders.csv", iotest.ErrReader(errors.New("connection reset")))
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRunRowLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("order_id,order_total_price,traffic_source\n")
	for i := 0; i < 5; i++ {
		sb.WriteString("1,10,utmcsr=(direct)|utmcmd=(none)\n")
	}
	b, err := newTestETL(3).Run("orders.csv", strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Len(t, b.Records, 3)
	assert.Equal(t, 5, b.Total)
	assert.Contains(t, b.Warning, "5 rows")
	assert.Contains(t, b.Warning, "first 3")
}

func TestRunSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"order_id", "order_total_price", "traffic_source", "order_date"},
		{1001, 19.99, "utmcsr=klaviyo|utmcmd=email|utmccn=campaign_42", 45357},
		{1002, 5, "utmcsr=google|utmcmd=organic", "15/01/2024"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	b, err := newTestETL(0).Run("export.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, b.Records, 2)

	r := b.Records[0]
	assert.Equal(t, "1001", r.OrderID)
	assert.True(t, r.TotalPrice.Equal(decimal.RequireFromString("19.99")), r.TotalPrice.String())
	assert.Equal(t, models.ChannelEmailMarketing, r.Channel)
	assert.Equal(t, "campaign_42", r.EmailCampaignID)
	assert.Equal(t, "2024-03", r.OrderMonth)

	assert.Equal(t, models.ChannelOrganicSearch, b.Records[1].Channel)
	assert.Equal(t, "2024-01", b.Records[1].OrderMonth)
}

func TestRunSpreadsheetTooLarge(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"order_id", "order_total_price", "traffic_source"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	etl := NewETL(log, config.Config{UnzipSizeLimit: 1024})
	_, err = etl.Run("export.xlsx", bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooComplex)
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Contains(t, err.Error(), "CSV")
}

func TestRunSpreadsheetGarbage(t *testing.T) {
	_, err := newTestETL(0).Run("export.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.NotErrorIs(t, err, ErrFileTooComplex)
}

func sheetBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestRunSpreadsheetNonFinitePrices(t *testing.T) {
	data := sheetBytes(t, [][]any{
		{"order_id", "order_total_price", "traffic_source"},
		{"1", "NaN", "utmcsr=google|utmcmd=cpc"},
		{"2", "Inf", "utmcsr=google|utmcmd=cpc"},
		{"3", "-Infinity", "utmcsr=google|utmcmd=cpc"},
		{"4", 12.5, "utmcsr=google|utmcmd=cpc"},
	})

	var b Batch
	var err error
	require.NotPanics(t, func() {
		b, err = newTestETL(0).Run("export.xlsx", bytes.NewReader(data))
	})
	require.NoError(t, err)
	require.Len(t, b.Records, 4)
	for _, r := range b.Records[:3] {
		assert.True(t, r.TotalPrice.IsZero(), "order %s: %s", r.OrderID, r.TotalPrice)
	}
	assert.True(t, b.Records[3].TotalPrice.Equal(decimal.RequireFromString("12.5")))
}

func TestRunOutOfRangePrices(t *testing.T) {
	csv := "order_id,order_total_price,traffic_source\n" +
		"1,1e300000000,utmcsr=google|utmcmd=cpc\n" +
		"2,1e-300000000,utmcsr=google|utmcmd=cpc\n" +
		"3,123456789012345678901234567890,utmcsr=google|utmcmd=cpc\n" +
		"4,19.990000000000002,utmcsr=google|utmcmd=cpc\n"

	b, err := newTestETL(0).Run("orders.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, b.Records, 4)
	for _, r := range b.Records[:3] {
		assert.True(t, r.TotalPrice.IsZero(), "order %s: %s", r.OrderID, r.TotalPrice)
	}
	assert.True(t, b.Records[3].TotalPrice.Equal(decimal.RequireFromString("19.99")))
}

func TestRunSpreadsheetKeepsTextIDs(t *testing.T) {
	data := sheetBytes(t, [][]any{
		{"order_id", "order_total_price", "traffic_source", "order_date"},
		{"00123", "42", "utmcsr=google|utmcmd=cpc", "45357"},
	})

	b, err := newTestETL(0).Run("export.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	assert.Equal(t, "00123", b.Records[0].OrderID)
	assert.True(t, b.Records[0].TotalPrice.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, "2024-03", b.Records[0].OrderMonth)
}

func TestRunCSVSerialDate(t *testing.T) {
	csv := "order_id,order_total_price,traffic_source,order_date\n" +
		"1,10,utmcsr=google|utmcmd=cpc,45357\n"

	b, err := newTestETL(0).Run("orders.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	assert.Equal(t, "2024-03", b.Records[0].OrderMonth)
}
