package main

import (
	"context"
	"fmt"
	"time"

	printingapp "github.com/sahelbuild/backend/internal/application/printing"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/printing"
	"github.com/sahelbuild/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

type receiptPrinting struct {
	*printingapp.ReceiptService
	renderer *printing.ChromeRenderer
	log      *zap.Logger
}

func (p *receiptPrinting) close() {
	if err := p.renderer.Close(); err != nil {
		p.log.Warn("Error closing PDF renderer", zap.Error(err))
	}
}

// newReceiptPrinting renders receipts to PDF through headless Chrome and,
// when storage is enabled, archives each one to the bucket. It returns nil
// when printing is off.
func newReceiptPrinting(cfg *config.Config, source printingapp.ReceiptSource, log *zap.Logger) (*receiptPrinting, error) {
	if !cfg.Printing.Enabled {
		log.Info("Receipt printing disabled")
		return nil, nil
	}

	var archive *storage.S3Bucket
	if cfg.Storage.Enabled {
		var err error
		if archive, err = storage.NewS3Bucket(cfg.Storage, log); err != nil {
			return nil, fmt.Errorf("receipt archive: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := archive.Ensure(ctx); err != nil {
			return nil, fmt.Errorf("prepare bucket %s: %w", archive.Name(), err)
		}
	}

	renderer := printing.NewChromeRenderer(printing.ChromeConfig{
		Timeout:   cfg.Printing.Timeout,
		RemoteURL: cfg.Printing.RemoteURL,
		NoSandbox: true,
	}, log)
	svc := printingapp.NewReceiptService(
		source,
		printing.NewReceiptTemplate(),
		renderer,
		printing.ParsePaperSize(cfg.Printing.PaperSize),
		log,
	)
	if archive != nil {
		svc.SetArchive(archive)
		log.Info("Receipt archive enabled", zap.String("bucket", archive.Name()))
	}
	return &receiptPrinting{ReceiptService: svc, renderer: renderer, log: log}, nil
}
