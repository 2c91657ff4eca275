package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tradewisehq/tradewise/internal/domain"
)

// ImportService defines the methods that the import handler requires.
type ImportService interface {
	Upload(ctx context.Context, fileName string, data []byte) (domain.PendingImport, error)
	GetPending(ctx context.Context, id string) (domain.PendingImport, error)
	Confirm(ctx context.Context, id string, initialBalance float64) (domain.MergeResult, error)
	Discard(ctx context.Context, id string) error
	InitialBalance(ctx context.Context) (float64, error)
}

// ImportHandler serves the statement upload and review endpoints.
type ImportHandler struct {
	imports      ImportService
	maxFileBytes int64
	logger       *slog.Logger
}

// NewImportHandler creates an ImportHandler. maxFileSizeMB caps the uploaded
// statement size; zero or negative falls back to 10 MB.
func NewImportHandler(imports ImportService, maxFileSizeMB int, logger *slog.Logger) *ImportHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &ImportHandler{
		imports:      imports,
		maxFileBytes: int64(maxFileSizeMB) << 20,
		logger:       logger,
	}
}

// Upload parses an uploaded broker statement and stages the result for
// review. The file is sent as multipart form data under the "file" field.
// POST /api/import
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes)
	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart form data with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	pending, err := h.imports.Upload(r.Context(), header.Filename, data)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

// GetPending returns a staged import batch so the client can render the
// review screen.
// GET /api/import/{id}
func (h *ImportHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.imports.GetPending(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// confirmImportRequest is the body of a confirm call. InitialBalance is
// optional; when omitted the stored balance is kept.
type confirmImportRequest struct {
	InitialBalance *float64 `json:"initial_balance"`
}

// ConfirmImport merges a staged batch into the journal.
// POST /api/import/{id}/confirm
func (h *ImportHandler) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmImportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	balance := 0.0
	if req.InitialBalance != nil {
		if *req.InitialBalance < 0 {
			writeError(w, http.StatusBadRequest, "initial_balance must not be negative")
			return
		}
		balance = *req.InitialBalance
	} else {
		stored, err := h.imports.InitialBalance(r.Context())
		if err != nil {
			writeDomainError(w, h.logger, r, err)
			return
		}
		balance = stored
	}

	result, err := h.imports.Confirm(r.Context(), pathParam(r, "id"), balance)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DiscardImport drops a staged batch without merging it.
// DELETE /api/import/{id}
func (h *ImportHandler) DiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := h.imports.Discard(r.Context(), pathParam(r, "id")); err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}
