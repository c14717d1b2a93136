package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	excelSheetName   = "Estimate"
	excelSheetWidth  = 7
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var excelColumnWidths = []float64{12, 30, 16, 14, 14, 14, 40}

// ExcelBackend renders estimates to an .xlsx workbook with excelize.
type ExcelBackend struct{}

func (ExcelBackend) Name() string        { return "excelize" }
func (ExcelBackend) Available() error    { return nil }
func (ExcelBackend) ContentType() string { return excelContentType }
func (ExcelBackend) Extension() string   { return "xlsx" }

func (ExcelBackend) NewRenderer() Renderer {
	r := &excelRenderer{f: excelize.NewFile(), row: 1, styles: make(map[excelStyleKey]int)}
	r.setup()
	return r
}

type excelStyleKey struct {
	kind  string
	size  float64
	bold  bool
	align Align
}

type excelRenderer struct {
	f      *excelize.File
	row    int
	styles map[excelStyleKey]int
	err    error
}

func (r *excelRenderer) fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *excelRenderer) setup() {
	defaultSheet := r.f.GetSheetName(0)
	if err := r.f.SetSheetName(defaultSheet, excelSheetName); err != nil {
		r.fail(fmt.Errorf("set sheet name: %w", err))
		return
	}
	for i, w := range excelColumnWidths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := r.f.SetColWidth(excelSheetName, name, name, w); err != nil {
			r.fail(fmt.Errorf("set col width %s: %w", name, err))
		}
	}
	r.fail(r.f.SetHeaderFooter(excelSheetName, &excelize.HeaderFooterOptions{
		OddFooter: "&RPage &P of &N",
	}))
}

func excelAlign(a Align) string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "left"
}

// style returns a cached style id for the given look.
func (r *excelRenderer) style(key excelStyleKey) int {
	if id, ok := r.styles[key]; ok {
		return id
	}
	size := key.size
	if size == 0 {
		size = 10
	}
	s := &excelize.Style{
		Font: &excelize.Font{Bold: key.bold, Size: size},
		Alignment: &excelize.Alignment{
			Horizontal: excelAlign(key.align),
			Vertical:   "top",
			WrapText:   true,
		},
	}
	switch key.kind {
	case "header":
		s.Font.Color = "#FFFFFF"
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1}
		s.Border = thinBorders()
	case "cell":
		s.Border = thinBorders()
	case "emphasis":
		s.Font.Color = "#FFFFFF"
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1}
	}
	id, err := r.f.NewStyle(s)
	if err != nil {
		r.fail(fmt.Errorf("create %s style: %w", key.kind, err))
		return 0
	}
	r.styles[key] = id
	return id
}

func cellName(colIdx, row int) string {
	name, _ := excelize.CoordinatesToCellName(colIdx, row)
	return name
}

// put writes value across columns [from, to] of the current row.
func (r *excelRenderer) put(from, to int, value string, styleID int) {
	start, end := cellName(from, r.row), cellName(to, r.row)
	if to > from {
		r.fail(r.f.MergeCell(excelSheetName, start, end))
	}
	r.fail(r.f.SetCellValue(excelSheetName, start, sanitizeExcelCell(value)))
	r.fail(r.f.SetCellStyle(excelSheetName, start, end, styleID))
}

func (r *excelRenderer) DrawText(b TextBlock) {
	r.put(1, excelSheetWidth, b.Text, r.style(excelStyleKey{kind: "text", size: b.Size, bold: b.Bold, align: b.Align}))
	r.row++
}

// DrawTable maps table columns onto sheet columns; a table narrower than the
// sheet stretches its first column over the spare width.
func (r *excelRenderer) DrawTable(tbl Table) {
	spans := make([][2]int, len(tbl.Columns))
	next := 1
	for i := range tbl.Columns {
		width := 1
		if i == 0 && len(tbl.Columns) < excelSheetWidth {
			width = excelSheetWidth - len(tbl.Columns) + 1
		}
		spans[i] = [2]int{next, next + width - 1}
		next += width
	}

	if tbl.ShowHeader {
		for i, c := range tbl.Columns {
			r.put(spans[i][0], spans[i][1], c.Title, r.style(excelStyleKey{kind: "header", size: 10, bold: true, align: AlignCenter}))
		}
		r.row++
	}

	for n, cells := range tbl.Rows {
		last := tbl.EmphasizeLastRow && n == len(tbl.Rows)-1
		for i, c := range tbl.Columns {
			value := ""
			if i < len(cells) {
				value = cells[i]
			}
			key := excelStyleKey{kind: "cell", size: 10, align: c.Align}
			if !tbl.ShowHeader {
				key.kind = "text"
				key.bold = true
			}
			if last {
				key = excelStyleKey{kind: "emphasis", size: 11, bold: true, align: c.Align}
			}
			r.put(spans[i][0], spans[i][1], value, r.style(key))
		}
		r.row++
	}
}

func (r *excelRenderer) DrawSpacer(float64) {
	r.row++
}

func (r *excelRenderer) NewPage() {
	r.fail(r.f.InsertPageBreak(excelSheetName, cellName(1, r.row)))
}

func (r *excelRenderer) Finish(ctx context.Context) ([]byte, error) {
	defer r.f.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}

	var buf bytes.Buffer
	if err := r.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
