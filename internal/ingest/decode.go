package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row es una fila decodificada: columna -> string o float64.
type Row map[string]any

const (
	bom             = "\ufeff"
	xmlSizeLimitMax = 16 << 20
)

func decode(filename string, r io.Reader, unzipLimit int64) ([]string, []Row, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return decodeCSV(r)
	case ".xlsx", ".xlsm", ".xls":
		return decodeSheet(r, unzipLimit)
	}
	if ext == "" {
		ext = filename
	}
	return nil, nil, fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, ext)
}

func decodeCSV(r io.Reader) ([]string, []Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return toRows(recs, func(_, s string) any { return s })
}

func decodeSheet(r io.Reader, unzipLimit int64) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r, excelize.Options{
		UnzipSizeLimit:    unzipLimit,
		UnzipXMLSizeLimit: min(unzipLimit, xmlSizeLimitMax),
	})
	if err != nil {
		return nil, nil, sheetErr(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrParseFailure)
	}
	recs, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, sheetErr(err)
	}
	return toRows(recs, sheetCell)
}

func sheetErr(err error) error {
	// excelize no exporta un error tipado para este caso
	if strings.Contains(err.Error(), "unzip size exceeds") {
		return fmt.Errorf("%w; export the sheet as CSV and upload that file instead", ErrFileTooComplex)
	}
	return fmt.Errorf("%w: %v", ErrParseFailure, err)
}

// sheetCell convierte a número sólo las columnas de precio y fecha, para que
// las fechas seriales lleguen como tales y los ids conserven sus ceros.
func sheetCell(col, s string) any {
	if _, ok := numericColumns[col]; !ok {
		return s
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	return f
}

func toRows(recs [][]string, cell func(col, v string) any) ([]string, []Row, error) {
	if len(recs) == 0 {
		return nil, nil, fmt.Errorf("%w: file is empty", ErrParseFailure)
	}
	header := make([]string, len(recs[0]))
	for i, h := range recs[0] {
		header[i] = headerKey(i, h)
	}
	rows := make([]Row, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, v := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell(header[i], v)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func headerKey(i int, h string) string {
	if i == 0 {
		h = strings.TrimPrefix(h, bom)
	}
	return strings.ToLower(strings.TrimSpace(h))
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
