package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, upload a .csv or .xlsx file")
	ErrParseFailure      = errors.New("could not parse file")
	ErrMissingColumns    = errors.New("missing required columns")

	// ErrFileTooComplex es el caso de exportaciones de hoja de cálculo que al
	// descomprimirse superan el límite configurado.
	ErrFileTooComplex = fmt.Errorf("%w: spreadsheet is too large once decompressed", ErrParseFailure)
)

type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return ErrMissingColumns.Error() + ": " + strings.Join(e.Missing, ", ")
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }
