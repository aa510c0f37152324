package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Fatal pre-processing errors. None of them lets a single row through.
var (
	ErrMalformedWorkbook = errors.New("the file could not be read as a spreadsheet")
	ErrEmptySheet        = errors.New("the spreadsheet is empty")
	ErrMissingHeader     = errors.New("the spreadsheet has no recognizable header row")
	ErrNoDataRows        = errors.New("the spreadsheet has no data rows")
)

// Sheet is the first worksheet of an uploaded file. Row numbers are the
// spreadsheet's own: the header is row 1.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []ImportRow
}

// ReadWorkbook parses an xlsx or csv upload, picked by file extension.
func ReadWorkbook(r io.Reader, filename string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return readCSV(r)
	default:
		return readXLSX(r)
	}
}

func readXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	name := sheets[0]

	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}

	cellAt := func(rowIdx, colIdx int) Cell {
		text := valueAt(formatted, rowIdx, colIdx)
		rawValue := valueAt(raw, rowIdx, colIdx)
		if strings.TrimSpace(text) == "" && strings.TrimSpace(rawValue) == "" {
			return EmptyValue()
		}

		axis, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
		if err != nil {
			return StringValue(text)
		}
		cellType, err := f.GetCellType(name, axis)
		if err != nil {
			return StringValue(text)
		}
		return typedCell(cellType, rawValue, text)
	}

	sheet, err := buildSheet(name, len(formatted), func(rowIdx int) int {
		return max(len(valueRow(formatted, rowIdx)), len(valueRow(raw, rowIdx)))
	}, cellAt)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// typedCell resolves one xlsx cell into the tagged union. Text keeps the
// displayed value, which is what users see and what errors echo.
func typedCell(cellType excelize.CellType, raw, text string) Cell {
	switch cellType {
	case excelize.CellTypeBool:
		return BoolValue(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return DateValue(t)
		}
		return StringValue(text)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return StringValue(text)
		}
		return Cell{Kind: NumberCell, Number: n, Text: text}
	default:
		return StringValue(text)
	}
}

func valueRow(rows [][]string, rowIdx int) []string {
	if rowIdx < 0 || rowIdx >= len(rows) {
		return nil
	}
	return rows[rowIdx]
}

func valueAt(rows [][]string, rowIdx, colIdx int) string {
	row := valueRow(rows, rowIdx)
	if colIdx < 0 || colIdx >= len(row) {
		return ""
	}
	return row[colIdx]
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptySheet
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}

	return buildSheet("csv", len(records), func(rowIdx int) int {
		return len(records[rowIdx])
	}, func(rowIdx, colIdx int) Cell {
		v := valueAt(records, rowIdx, colIdx)
		if strings.TrimSpace(v) == "" {
			return EmptyValue()
		}
		return StringValue(v)
	})
}

// detectDelimiter prefers ';', common in pt-BR exports, when the header line
// has more semicolons than commas.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// buildSheet takes row 1 as the header and every following row as data.
func buildSheet(name string, rowCount int, width func(rowIdx int) int, cellAt func(rowIdx, colIdx int) Cell) (*Sheet, error) {
	if rowCount == 0 {
		return nil, ErrEmptySheet
	}

	headerWidth := width(0)
	headers := make([]string, headerWidth)
	for col := 0; col < headerWidth; col++ {
		headers[col] = strings.TrimSpace(cellAt(0, col).TrimmedText())
	}
	if !HasKnownHeader(headers) {
		return nil, ErrMissingHeader
	}

	sheet := &Sheet{Name: name, Headers: headers}
	for rowIdx := 1; rowIdx < rowCount; rowIdx++ {
		row := ImportRow{Number: rowIdx + 1}
		for col, header := range headers {
			if header == "" {
				continue
			}
			row.Fields = append(row.Fields, RawField{Key: header, Cell: cellAt(rowIdx, col)})
		}
		if row.IsBlank() {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return sheet, nil
}
