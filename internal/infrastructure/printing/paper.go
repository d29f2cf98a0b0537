package printing

// PaperSize is the output paper of a rendered document
type PaperSize string

const (
	PaperSizeA4          PaperSize = "A4"           // 210mm x 297mm
	PaperSizeA5          PaperSize = "A5"           // 148mm x 210mm
	PaperSizeReceipt58MM PaperSize = "RECEIPT_58MM" // 58mm thermal roll
	PaperSizeReceipt80MM PaperSize = "RECEIPT_80MM" // 80mm thermal roll
)

// ParsePaperSize returns the paper size for a configured name, falling back
// to the 80mm roll used at the counter.
func ParsePaperSize(name string) PaperSize {
	p := PaperSize(name)
	if !p.IsValid() {
		return PaperSizeReceipt80MM
	}
	return p
}

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeReceipt58MM, PaperSizeReceipt80MM:
		return true
	}
	return false
}

// Dimensions returns the paper dimensions in millimeters. Receipt rolls
// have no fixed height and report zero.
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeReceipt58MM:
		return 58, 0
	case PaperSizeReceipt80MM:
		return 80, 0
	default:
		return 210, 297
	}
}

// IsReceipt returns true for thermal roll sizes
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt58MM || p == PaperSizeReceipt80MM
}

// Orientation is the page orientation
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins are page margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns the margins used for A4 and A5 pages
func DefaultMargins() Margins {
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}

// ReceiptMargins returns minimal margins for thermal rolls
func ReceiptMargins() Margins {
	return Margins{Top: 2, Right: 2, Bottom: 2, Left: 2}
}

// MarginsFor picks the margins matching a paper size
func MarginsFor(p PaperSize) Margins {
	if p.IsReceipt() {
		return ReceiptMargins()
	}
	return DefaultMargins()
}
