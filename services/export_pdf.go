package services

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// MarotoBackend renders estimates to PDF with maroto/v2. It has no external
// runtime requirements and is always available.
type MarotoBackend struct{}

func (MarotoBackend) Name() string        { return "maroto" }
func (MarotoBackend) Available() error    { return nil }
func (MarotoBackend) ContentType() string { return pdfContentType }
func (MarotoBackend) Extension() string   { return "pdf" }

func (MarotoBackend) NewRenderer() Renderer {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	return &marotoRenderer{m: maroto.New(cfg)}
}

type marotoRenderer struct {
	m core.Maroto
}

var (
	headerBg      = &props.Color{Red: 33, Green: 37, Blue: 41}
	headerFg      = &props.Color{Red: 255, Green: 255, Blue: 255}
	altRowBg      = &props.Color{Red: 248, Green: 249, Blue: 250}
	summaryBg     = &props.Color{Red: 245, Green: 245, Blue: 245}
	mutedTextGrey = &props.Color{Red: 80, Green: 80, Blue: 80}
)

func marotoAlign(a Align) align.Type {
	switch a {
	case AlignCenter:
		return align.Center
	case AlignRight:
		return align.Right
	}
	return align.Left
}

func (r *marotoRenderer) DrawText(b TextBlock) {
	style := fontstyle.Normal
	if b.Bold {
		style = fontstyle.Bold
	}
	size := b.Size
	if size == 0 {
		size = 9
	}
	t := props.Text{Size: size, Style: style, Align: marotoAlign(b.Align), Top: 1}
	if !b.Bold && size < 10 {
		t.Color = mutedTextGrey
	}
	r.m.AddAutoRow(col.New(12).Add(text.New(b.Text, t)))
}

// DrawTable adds one auto-height row per table row so long cells wrap and
// maroto carries the table across page breaks.
func (r *marotoRenderer) DrawTable(tbl Table) {
	if tbl.ShowHeader {
		headerCell := &props.Cell{BackgroundColor: headerBg}
		cols := make([]core.Col, 0, len(tbl.Columns))
		for _, c := range tbl.Columns {
			cols = append(cols, col.New(c.Span).Add(
				text.New(c.Title, props.Text{
					Size:  7,
					Style: fontstyle.Bold,
					Align: marotoAlign(c.Align),
					Color: headerFg,
					Top:   1.5,
					Left:  1,
					Right: 1,
				}),
			).WithStyle(headerCell))
		}
		r.m.AddRows(row.New(8).Add(cols...))
	}

	for i, cells := range tbl.Rows {
		last := tbl.EmphasizeLastRow && i == len(tbl.Rows)-1

		var cellStyle *props.Cell
		switch {
		case last:
			cellStyle = &props.Cell{BackgroundColor: headerBg}
		case !tbl.ShowHeader:
			cellStyle = &props.Cell{BackgroundColor: summaryBg}
		case i%2 == 1:
			cellStyle = &props.Cell{BackgroundColor: altRowBg}
		}

		cols := make([]core.Col, 0, len(tbl.Columns))
		for j, c := range tbl.Columns {
			value := ""
			if j < len(cells) {
				value = cells[j]
			}
			t := props.Text{Size: 7, Align: marotoAlign(c.Align), Top: 1.5, Left: 1, Right: 1}
			if !tbl.ShowHeader {
				t.Size = 8
				t.Style = fontstyle.Bold
			}
			if last {
				t.Size = 9
				t.Style = fontstyle.Bold
				t.Color = headerFg
			}
			cl := col.New(c.Span).Add(text.New(value, t))
			if cellStyle != nil {
				cl = cl.WithStyle(cellStyle)
			}
			cols = append(cols, cl)
		}
		r.m.AddAutoRow(cols...)
	}
}

func (r *marotoRenderer) DrawSpacer(height float64) {
	r.m.AddRows(row.New(height))
}

// NewPage closes the current page; following rows start on a fresh one.
func (r *marotoRenderer) NewPage() {
	r.m.AddPages(page.New())
}

func (r *marotoRenderer) Finish(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := r.m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}
