package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/invoice"
)

// AuditService stores zstd-compressed snapshots of committed invoices for
// later reconciliation. It implements invoice.AuditWriter and is strictly
// best-effort: a failed snapshot never blocks a sale.
type AuditService struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewAuditService creates an audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// RecordInvoice writes a compressed snapshot of the committed invoice.
func (s *AuditService) RecordInvoice(ctx context.Context, inv *invoice.Invoice) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice snapshot: %w", err)
	}

	compressed := s.encoder.EncodeAll(payload, nil)

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, `
		INSERT INTO invoice_audit (id, invoice_number, snapshot, created_at)
		VALUES ($1, $2, $3, $4)
	`, id.New(), inv.Number, compressed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert invoice audit: %w", err)
	}

	return nil
}

// ReadSnapshot decompresses a stored snapshot back into an invoice.
func (s *AuditService) ReadSnapshot(compressed []byte) (*invoice.Invoice, error) {
	payload, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var inv invoice.Invoice
	if err := json.Unmarshal(payload, &inv); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &inv, nil
}
