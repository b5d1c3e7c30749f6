package pdf

import (
	"fmt"
	"strings"

	"timetable-sync-service/internal/domain/entity"

	"github.com/ledongthuc/pdf"
)

// Horizontal gap (in PDF points) that separates two table cells. Text
// fragments closer than this belong to the same cell, wrapped lines
// included.
const cellGap = 12.0

// TableFromPDF reads the text layer of every page and reassembles it into a
// RawTable: one RawRow per printed text row, cells split on horizontal gaps.
// The reconciliation core consumes the result as an opaque table and never
// touches the PDF itself.
func TableFromPDF(path string) (entity.RawTable, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	table := entity.RawTable{SourceName: path}
	rowNumber := 0

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return entity.RawTable{}, fmt.Errorf("read page %d of %s: %w", pageNum, path, err)
		}

		for _, row := range rows {
			cells := cellsFromTexts(row.Content)
			if len(cells) == 0 {
				continue
			}
			rowNumber++
			table.Rows = append(table.Rows, entity.RawRow{
				Number: rowNumber,
				Cells:  cells,
			})
		}
	}

	return table, nil
}

func cellsFromTexts(texts []pdf.Text) []string {
	var cells []string
	var current strings.Builder
	var prevEnd float64

	for i, t := range texts {
		if i > 0 && t.X-prevEnd > cellGap {
			cells = appendCell(cells, current.String())
			current.Reset()
		}
		current.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	cells = appendCell(cells, current.String())
	return cells
}

func appendCell(cells []string, text string) []string {
	if strings.TrimSpace(text) == "" {
		return cells
	}
	return append(cells, text)
}
