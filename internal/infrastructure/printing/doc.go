// Package printing turns sale receipts into PDF documents.
//
// A ReceiptTemplate renders the receipt view into HTML and a PDFRenderer
// prints that HTML through headless Chrome:
//
//	renderer := NewChromeRenderer(ChromeConfig{RemoteURL: cfg.Printing.RemoteURL}, log)
//	defer renderer.Close()
//	html, err := NewReceiptTemplate().Render(receipt)
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:      html,
//	    PaperSize: PaperSizeReceipt80MM,
//	    Margins:   ReceiptMargins(),
//	})
package printing
