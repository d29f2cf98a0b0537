package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second
	// Rolls print on one tall page and Chrome stops at the content.
	rollPageHeightMM = 3000
	mmPerInch        = 25.4
)

// ChromeConfig selects the browser receipts are printed with.
type ChromeConfig struct {
	Timeout time.Duration
	// RemoteURL is the DevTools websocket of a running headless Chrome.
	// Empty launches a local browser on first use.
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root inside a container.
	NoSandbox bool
}

// ChromeRenderer prints HTML to PDF through the Chrome DevTools protocol.
// Each render opens its own tab on a shared browser allocator.
type ChromeRenderer struct {
	timeout time.Duration
	log     *zap.Logger
	alloc   context.Context
	release context.CancelFunc
}

func NewChromeRenderer(cfg ChromeConfig, log *zap.Logger) *ChromeRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRenderTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &ChromeRenderer{timeout: cfg.Timeout, log: log.Named("chrome")}

	if cfg.RemoteURL != "" {
		r.alloc, r.release = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.alloc, r.release = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

func (r *ChromeRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.alloc, chromedp.WithLogf(r.log.Sugar().Debugf))
	defer closeTab()
	defer context.AfterFunc(ctx, closeTab)()

	started := time.Now()
	doc := document(req.Title, req.HTML)
	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = printParams(req).Do(ctx)
			return err
		}),
	)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("rendering took longer than %v", timeout), err)
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, NewRenderError(ErrCodeRenderTimeout, "rendering cancelled", err)
		}
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome print failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome returned an empty PDF", nil)
	}

	res := &RenderResult{PDFData: pdf, PageCount: countPages(pdf), RenderDuration: time.Since(started)}
	r.log.Debug("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration),
	)
	return res, nil
}

// Close shuts down the browser, or disconnects from a remote one.
func (r *ChromeRenderer) Close() error {
	r.release()
	return nil
}

// printParams sizes the page in inches as Chrome expects.
func printParams(req *RenderRequest) *page.PrintToPDFParams {
	width, height := req.PaperSize.Dimensions()
	if req.PaperSize.IsReceipt() {
		height = rollPageHeightMM
	}
	m := req.Margins
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithLandscape(req.Orientation == OrientationLandscape).
		WithPaperWidth(inches(width)).
		WithPaperHeight(inches(height)).
		WithMarginTop(inches(m.Top)).
		WithMarginRight(inches(m.Right)).
		WithMarginBottom(inches(m.Bottom)).
		WithMarginLeft(inches(m.Left))
}

func inches(mm int) float64 {
	return float64(mm) / mmPerInch
}

// document wraps a fragment in a minimal page. Full documents pass through.
func document(title, body string) string {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return body
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if title != "" {
		b.WriteString("<title>" + html.EscapeString(title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}

// countPages counts page objects. The page tree node shares the prefix and
// is subtracted.
func countPages(pdf []byte) int {
	s := string(pdf)
	return max(strings.Count(s, "/Type /Page")-strings.Count(s, "/Type /Pages"), 1)
}

var _ PDFRenderer = (*ChromeRenderer)(nil)
