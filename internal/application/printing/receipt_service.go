// Package printing turns sale receipts into PDF documents.
package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	infra "github.com/sahelbuild/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// ReceiptSource builds the receipt view of a sale
type ReceiptSource interface {
	Receipt(ctx context.Context, id uuid.UUID) (*sales.Receipt, error)
}

// ReceiptLayout renders a receipt as HTML
type ReceiptLayout interface {
	Render(receipt *sales.Receipt) (string, error)
}

// ReceiptArchive keeps rendered receipts
type ReceiptArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// ReceiptPDF is a rendered receipt
type ReceiptPDF struct {
	Number   string
	Filename string
	Data     []byte
	Pages    int
	// ArchiveKey is set when the document was archived
	ArchiveKey string
}

// ReceiptService renders receipts to PDF and optionally archives them
type ReceiptService struct {
	source    ReceiptSource
	layout    ReceiptLayout
	renderer  infra.PDFRenderer
	archive   ReceiptArchive
	paperSize infra.PaperSize
	logger    *zap.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	source ReceiptSource,
	layout ReceiptLayout,
	renderer infra.PDFRenderer,
	paperSize infra.PaperSize,
	logger *zap.Logger,
) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		source:    source,
		layout:    layout,
		renderer:  renderer,
		paperSize: paperSize,
		logger:    logger,
	}
}

// SetArchive enables archiving of every rendered receipt
func (s *ReceiptService) SetArchive(archive ReceiptArchive) {
	s.archive = archive
}

// ArchiveKey returns the object key a receipt is stored under
func ArchiveKey(receipt *sales.Receipt) string {
	return fmt.Sprintf("receipts/%s/%s.pdf", receipt.Date.UTC().Format("2006/01"), receipt.Number)
}

// RenderPDF renders the receipt of a sale. An archive failure is logged and
// does not fail the request.
func (s *ReceiptService) RenderPDF(ctx context.Context, saleID uuid.UUID) (*ReceiptPDF, error) {
	receipt, err := s.source.Receipt(ctx, saleID)
	if err != nil {
		return nil, err
	}

	html, err := s.layout.Render(receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt layout: %w", err)
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        html,
		PaperSize:   s.paperSize,
		Orientation: infra.OrientationPortrait,
		Margins:     infra.MarginsFor(s.paperSize),
		Title:       "Receipt " + receipt.Number,
	})
	if err != nil {
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) && renderErr.Code == infra.ErrCodeRenderTimeout {
			return nil, shared.NewDomainError("RENDER_TIMEOUT", "Receipt rendering timed out")
		}
		s.logger.Error("Receipt rendering failed",
			zap.String("number", receipt.Number),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to render receipt PDF: %w", err)
	}

	pdf := &ReceiptPDF{
		Number:   receipt.Number,
		Filename: receipt.Number + ".pdf",
		Data:     result.PDFData,
		Pages:    result.PageCount,
	}

	if s.archive != nil {
		key := ArchiveKey(receipt)
		if err := s.archive.Put(ctx, key, result.PDFData, pdfContentType); err != nil {
			s.logger.Warn("Failed to archive receipt",
				zap.String("number", receipt.Number),
				zap.String("key", key),
				zap.Error(err),
			)
		} else {
			pdf.ArchiveKey = key
		}
	}

	s.logger.Debug("Receipt rendered",
		zap.String("number", receipt.Number),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	return pdf, nil
}

// ArchivedLink returns a download link for an archived receipt
func (s *ReceiptService) ArchivedLink(ctx context.Context, saleID uuid.UUID) (string, time.Time, error) {
	if s.archive == nil {
		return "", time.Time{}, shared.NewDomainError("ARCHIVE_DISABLED", "Receipt archive is not configured")
	}
	receipt, err := s.source.Receipt(ctx, saleID)
	if err != nil {
		return "", time.Time{}, err
	}
	key := ArchiveKey(receipt)
	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		return "", time.Time{}, err
	}
	if !exists {
		return "", time.Time{}, shared.NewDomainError("NOT_FOUND", "Receipt has not been archived yet")
	}
	return s.archive.DownloadURL(ctx, key)
}
