package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxSheetName = 31
	minColWidth  = 8
	maxColWidth  = 60
)

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")

// sheetName makes name a valid worksheet name.
func sheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	if name == "" {
		return "Report"
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}

func cellWidth(v interface{}) float64 {
	return float64(utf8.RuneCountInString(fmt.Sprint(v))) + 2
}

// WriteWorkbook renders the sheet as an xlsx workbook with a bold, frozen header row.
func WriteWorkbook(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(sheet.Name)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}

	widths := make([]float64, len(sheet.Headers))
	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
		widths[i] = cellWidth(h)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}

	for r, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, errors.Wrap(err, "locating row")
		}
		row := row
		if err = f.SetSheetRow(name, cell, &row); err != nil {
			return nil, errors.Wrapf(err, "writing row %d", r+1)
		}
		for i, v := range row {
			if i < len(widths) {
				if w := cellWidth(v); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	if len(sheet.Headers) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating header style")
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err != nil {
			return nil, errors.Wrap(err, "locating header")
		}
		if err = f.SetCellStyle(name, "A1", last, style); err != nil {
			return nil, errors.Wrap(err, "styling header")
		}
		if err = f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return nil, errors.Wrap(err, "freezing header")
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, errors.Wrap(err, "naming column")
		}
		if w < minColWidth {
			w = minColWidth
		} else if w > maxColWidth {
			w = maxColWidth
		}
		if err = f.SetColWidth(name, col, col, w); err != nil {
			return nil, errors.Wrap(err, "sizing column")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}
