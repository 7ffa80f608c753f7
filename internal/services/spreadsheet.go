package services

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"shoestore-service/internal/models"
)

// ErrUnreadableSpreadsheet is returned for files that cannot be decoded into rows
var ErrUnreadableSpreadsheet = errors.New("unreadable spreadsheet")

// RowSource yields decoded spreadsheet rows
type RowSource interface {
	All() iter.Seq[models.ImportRow]
}

type sheetRows struct {
	headers []string
	rows    [][]string
}

// canonicalColumns maps lower-cased header text to the column key
var canonicalColumns = func() map[string]string {
	m := make(map[string]string, len(models.ImportColumns))
	for _, col := range models.ImportColumns {
		m[strings.ToLower(col)] = col
	}
	return m
}()

// DecodeSpreadsheet reads the first sheet of a workbook. The first row is the
// header; rows missing any required column are skipped.
func DecodeSpreadsheet(data []byte) (RowSource, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrUnreadableSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in Excel file", ErrUnreadableSpreadsheet)
	}

	// raw values keep number formats like #,##0 out of prices
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet: %v", ErrUnreadableSpreadsheet, err)
	}
	if err := renderBoolCells(f, sheets[0], rows); err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet: %v", ErrUnreadableSpreadsheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: file must have a header row and at least one data row", ErrUnreadableSpreadsheet)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSuffix(strings.TrimSpace(h), "*")
		headers[i] = canonicalColumns[strings.ToLower(strings.TrimSpace(h))]
	}

	return &sheetRows{headers: headers, rows: rows[1:]}, nil
}

// renderBoolCells rewrites boolean cells, which raw reads return as 1 or 0,
// to true or false
func renderBoolCells(f *excelize.File, sheet string, rows [][]string) error {
	for r, cells := range rows {
		for c, value := range cells {
			if value != "0" && value != "1" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			cellType, err := f.GetCellType(sheet, cell)
			if err != nil {
				return err
			}
			if cellType == excelize.CellTypeBool {
				cells[c] = strconv.FormatBool(value == "1")
			}
		}
	}
	return nil
}

// All yields rows in sheet order. RowNumber is the sheet row, header being row 1.
func (s *sheetRows) All() iter.Seq[models.ImportRow] {
	return func(yield func(models.ImportRow) bool) {
		for idx, cells := range s.rows {
			row := models.ImportRow{
				RowNumber: idx + 2,
				Fields:    make(map[string]string, len(s.headers)),
			}
			for i, column := range s.headers {
				if column == "" {
					continue
				}
				value := ""
				if i < len(cells) {
					value = strings.TrimSpace(cells[i])
				}
				row.Fields[column] = value
			}

			if len(MissingRequired(row)) > 0 {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// MissingRequired lists the required columns that are empty in row
func MissingRequired(row models.ImportRow) []string {
	var missing []string
	for _, column := range models.RequiredImportColumns {
		if row.Get(column) == "" {
			missing = append(missing, column)
		}
	}
	return missing
}
