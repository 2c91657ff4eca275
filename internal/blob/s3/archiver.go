package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// TradeArchiveStore is the slice of the trade store the archiver needs:
// time-ranged reads plus deletion of what was archived.
type TradeArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.Trade, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ArchiveImpl implements domain.Archiver. Raw broker statements are copied
// to the bucket as uploaded; aged-out trades are serialized to JSONL before
// removal from the primary store.
type ArchiveImpl struct {
	writer domain.BlobWriter
	trades TradeArchiveStore
	audit  domain.AuditStore
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, trades TradeArchiveStore, audit domain.AuditStore) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		trades: trades,
		audit:  audit,
	}
}

// ArchiveStatement stores the raw uploaded statement bytes under
// statements/YYYY/MM/{batchID}{ext} and returns the object path. The upload
// keeps its original extension so an archived statement can be re-imported
// as-is.
func (a *ArchiveImpl) ArchiveStatement(ctx context.Context, batchID, fileName string, data []byte) (string, error) {
	ext := filepath.Ext(fileName)
	now := time.Now().UTC()
	path := fmt.Sprintf("statements/%s/%s%s", now.Format("2006/01"), batchID, ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := a.writer.Put(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("s3blob: archive statement upload: %w", err)
	}

	if err := a.audit.Log(ctx, "archive.statement", map[string]any{
		"path":      path,
		"batch_id":  batchID,
		"file_name": fileName,
		"size":      len(data),
	}); err != nil {
		return path, fmt.Errorf("s3blob: archive statement audit log: %w", err)
	}

	return path, nil
}

// ArchiveTrades moves every trade closed before the cutoff out of the
// primary store: the rows are serialized to JSONL, uploaded to
// archive/trades/YYYY-MM.jsonl, and deleted only after the upload succeeds.
// The count of archived rows is returned.
func (a *ArchiveImpl) ArchiveTrades(ctx context.Context, before time.Time) (int64, error) {
	trades, err := a.trades.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades query: %w", err)
	}
	if len(trades) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(trades)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades marshal: %w", err)
	}

	path := fmt.Sprintf("archive/trades/%s.jsonl", before.Format("2006-01"))
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive trades upload: %w", err)
	}

	deleted, err := a.trades.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades delete: %w", err)
	}

	if err := a.audit.Log(ctx, "archive.trades", map[string]any{
		"path":    path,
		"count":   len(trades),
		"deleted": deleted,
		"before":  before.Format(time.RFC3339),
	}); err != nil {
		return int64(len(trades)), fmt.Errorf("s3blob: archive trades audit log: %w", err)
	}

	return int64(len(trades)), nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
