package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeBackend prints estimates to PDF through headless Chrome. It is only
// available where a Chrome or Chromium binary can be found.
type ChromeBackend struct {
	// ExecPath overrides browser detection.
	ExecPath string
	Timeout  time.Duration
}

func (b ChromeBackend) Name() string        { return "chromedp" }
func (b ChromeBackend) ContentType() string { return pdfContentType }
func (b ChromeBackend) Extension() string   { return "pdf" }

func (b ChromeBackend) Available() error {
	if b.execPath() == "" {
		return fmt.Errorf("%w: no Chrome/Chromium executable found (set CHROME_PATH)", ErrRendererUnavailable)
	}
	return nil
}

func (b ChromeBackend) NewRenderer() Renderer {
	return &chromeRenderer{backend: b}
}

func (b ChromeBackend) execPath() string {
	if b.ExecPath != "" {
		if _, err := os.Stat(b.ExecPath); err == nil {
			return b.ExecPath
		}
		return ""
	}
	return detectChromePath()
}

// detectChromePath checks CHROME_PATH first, then common installation paths
// and finally $PATH.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

type chromeRenderer struct {
	backend ChromeBackend
	title   string
	parts   []templ.Component
}

func (r *chromeRenderer) DrawText(b TextBlock) {
	if r.title == "" {
		r.title = b.Text
	}
	r.parts = append(r.parts, htmlText(b))
}

func (r *chromeRenderer) DrawTable(t Table) {
	r.parts = append(r.parts, htmlTable(t))
}

func (r *chromeRenderer) DrawSpacer(height float64) {
	r.parts = append(r.parts, htmlRaw(`<div style="height:`+strconv.FormatFloat(height, 'f', -1, 64)+`mm"></div>`))
}

func (r *chromeRenderer) NewPage() {
	r.parts = append(r.parts, htmlRaw(`<div class="page-break"></div>`))
}

// HTML renders the drawn content as a standalone HTML document.
func (r *chromeRenderer) HTML(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := htmlDocument(r.title, r.parts).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("render estimate HTML: %w", err)
	}
	return buf.String(), nil
}

const chromeFooterTemplate = `<div style="font-size:7px;color:#787878;width:100%;text-align:right;padding-right:10mm">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

func (r *chromeRenderer) Finish(ctx context.Context) ([]byte, error) {
	html, err := r.HTML(ctx)
	if err != nil {
		return nil, err
	}

	chromePath := r.backend.execPath()
	if chromePath == "" {
		return nil, r.backend.Available()
	}

	timeout := r.backend.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var pdfBuf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 is 8.27" x 11.69".
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.6).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate("<span></span>").
				WithFooterTemplate(chromeFooterTemplate).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
		}
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

const estimateCSS = `
body { font-family: Helvetica, Arial, sans-serif; font-size: 9pt; color: #212529; margin: 0; }
p { margin: 0 0 1.5mm 0; }
.al-left { text-align: left; } .al-center { text-align: center; } .al-right { text-align: right; }
.bold { font-weight: bold; }
table { width: 100%; border-collapse: collapse; table-layout: fixed; }
th { background: #212529; color: #fff; font-size: 7pt; padding: 1.5mm 1mm; }
td { font-size: 7pt; padding: 1.5mm 1mm; vertical-align: top; word-wrap: break-word; }
tbody tr:nth-child(even) td { background: #f8f9fa; }
table.summary td { background: #f5f5f5; font-size: 8pt; font-weight: bold; }
tr.emphasis td { background: #212529 !important; color: #fff; font-size: 9pt; }
tr { page-break-inside: avoid; }
.page-break { page-break-after: always; }
`

func alignClass(a Align) string {
	switch a {
	case AlignCenter:
		return "al-center"
	case AlignRight:
		return "al-right"
	}
	return "al-left"
}

func htmlRaw(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func htmlText(b TextBlock) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := alignClass(b.Align)
		if b.Bold {
			class += " bold"
		}
		size := b.Size
		if size == 0 {
			size = 9
		}
		_, err := fmt.Fprintf(w, `<p class="%s" style="font-size:%spt">%s</p>`,
			class, strconv.FormatFloat(size, 'f', -1, 64), templ.EscapeString(b.Text))
		return err
	})
}

// htmlTable renders a table; Chrome repeats <thead> on every printed page.
func htmlTable(t Table) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if t.ShowHeader {
			buf.WriteString(`<table class="items"><colgroup>`)
		} else {
			buf.WriteString(`<table class="summary"><colgroup>`)
		}
		for _, c := range t.Columns {
			fmt.Fprintf(&buf, `<col style="width:%.4f%%">`, float64(c.Span)*100/12)
		}
		buf.WriteString(`</colgroup>`)

		if t.ShowHeader {
			buf.WriteString(`<thead><tr>`)
			for _, c := range t.Columns {
				fmt.Fprintf(&buf, `<th class="%s">%s</th>`, alignClass(c.Align), templ.EscapeString(c.Title))
			}
			buf.WriteString(`</tr></thead>`)
		}

		buf.WriteString(`<tbody>`)
		for i, cells := range t.Rows {
			if t.EmphasizeLastRow && i == len(t.Rows)-1 {
				buf.WriteString(`<tr class="emphasis">`)
			} else {
				buf.WriteString(`<tr>`)
			}
			for j, c := range t.Columns {
				value := ""
				if j < len(cells) {
					value = cells[j]
				}
				fmt.Fprintf(&buf, `<td class="%s">%s</td>`, alignClass(c.Align), templ.EscapeString(value))
			}
			buf.WriteString(`</tr>`)
		}
		buf.WriteString(`</tbody></table>`)

		_, err := w.Write(buf.Bytes())
		return err
	})
}

func htmlDocument(title string, parts []templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
			templ.EscapeString(title), estimateCSS); err != nil {
			return err
		}
		for _, p := range parts {
			if err := p.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
