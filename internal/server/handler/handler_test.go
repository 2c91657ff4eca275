package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewisehq/tradewise/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubImportService returns canned values so tests can drive each branch of
// the import handler.
type stubImportService struct {
	pending    domain.PendingImport
	result     domain.MergeResult
	balance    float64
	err        error
	lastName   string
	lastData   []byte
	confirmBal float64
}

func (s *stubImportService) Upload(_ context.Context, fileName string, data []byte) (domain.PendingImport, error) {
	s.lastName = fileName
	s.lastData = data
	return s.pending, s.err
}

func (s *stubImportService) GetPending(context.Context, string) (domain.PendingImport, error) {
	return s.pending, s.err
}

func (s *stubImportService) Confirm(_ context.Context, _ string, initialBalance float64) (domain.MergeResult, error) {
	s.confirmBal = initialBalance
	return s.result, s.err
}

func (s *stubImportService) Discard(context.Context, string) error { return s.err }

func (s *stubImportService) InitialBalance(context.Context) (float64, error) {
	return s.balance, nil
}

func multipartBody(t *testing.T, field, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadStagesStatement(t *testing.T) {
	svc := &stubImportService{
		pending: domain.PendingImport{ID: "batch-1", FileName: "report.csv"},
	}
	h := NewImportHandler(svc, 10, discardLogger())

	body, contentType := multipartBody(t, "file", "report.csv", "Time,Symbol\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "report.csv", svc.lastName)
	assert.Equal(t, []byte("Time,Symbol\n"), svc.lastData)

	var got domain.PendingImport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "batch-1", got.ID)
}

func TestUploadRequiresFileField(t *testing.T) {
	h := NewImportHandler(&stubImportService{}, 10, discardLogger())

	body, contentType := multipartBody(t, "attachment", "report.csv", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMapsImportErrorsTo422(t *testing.T) {
	svc := &stubImportService{err: &domain.UnsupportedFileTypeError{Ext: ".pdf"}}
	h := NewImportHandler(svc, 10, discardLogger())

	body, contentType := multipartBody(t, "file", "report.pdf", "%PDF")
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), ".pdf")
}

func TestConfirmUsesBodyBalance(t *testing.T) {
	svc := &stubImportService{
		result:  domain.MergeResult{Imported: 3, Skipped: 1},
		balance: 5000,
	}
	h := NewImportHandler(svc, 10, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/import/{id}/confirm", h.ConfirmImport)

	req := httptest.NewRequest(http.MethodPost, "/api/import/batch-1/confirm",
		strings.NewReader(`{"initial_balance": 2500}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2500.0, svc.confirmBal)

	var got domain.MergeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Imported)
	assert.Equal(t, 1, got.Skipped)
}

func TestConfirmFallsBackToStoredBalance(t *testing.T) {
	svc := &stubImportService{balance: 7500}
	h := NewImportHandler(svc, 10, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/import/{id}/confirm", h.ConfirmImport)

	req := httptest.NewRequest(http.MethodPost, "/api/import/batch-1/confirm", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7500.0, svc.confirmBal)
}

func TestConfirmDoubleSubmitConflicts(t *testing.T) {
	svc := &stubImportService{err: domain.ErrAlreadyExists}
	h := NewImportHandler(svc, 10, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/import/{id}/confirm", h.ConfirmImport)

	req := httptest.NewRequest(http.MethodPost, "/api/import/batch-1/confirm", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPendingUnknownBatch(t *testing.T) {
	svc := &stubImportService{err: domain.ErrNotFound}
	h := NewImportHandler(svc, 10, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/import/{id}", h.GetPending)

	req := httptest.NewRequest(http.MethodGet, "/api/import/nope", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// stubTradeService records the ListOpts it receives.
type stubTradeService struct {
	trades []domain.Trade
	err    error
	opts   domain.ListOpts
	trade  domain.Trade
}

func (s *stubTradeService) List(_ context.Context, opts domain.ListOpts) ([]domain.Trade, error) {
	s.opts = opts
	return s.trades, s.err
}

func (s *stubTradeService) Get(context.Context, string) (domain.Trade, error) {
	return s.trade, s.err
}

func (s *stubTradeService) Update(_ context.Context, trade domain.Trade) error {
	s.trade = trade
	return s.err
}

func (s *stubTradeService) Create(_ context.Context, trade domain.Trade) (domain.Trade, error) {
	s.trade = trade
	return trade, s.err
}

func (s *stubTradeService) Delete(context.Context, string) error { return s.err }

func (s *stubTradeService) Reset(context.Context) (int64, error) {
	return int64(len(s.trades)), s.err
}

func TestListTradesParsesFilters(t *testing.T) {
	svc := &stubTradeService{}
	h := NewTradeHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/trades?symbol=EURUSD&since=2023-01-01&until=2023-06-30T23:59:59Z&limit=25&offset=50", nil)
	rec := httptest.NewRecorder()
	h.ListTrades(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EURUSD", svc.opts.Symbol)
	assert.Equal(t, 25, svc.opts.Limit)
	assert.Equal(t, 50, svc.opts.Offset)
	require.NotNil(t, svc.opts.Since)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), *svc.opts.Since)
	require.NotNil(t, svc.opts.Until)
	assert.Equal(t, time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC), *svc.opts.Until)

	// Nil trade slices serialize as an empty array, not null.
	assert.JSONEq(t, `{"trades":[]}`, rec.Body.String())
}

func TestListTradesCapsLimit(t *testing.T) {
	svc := &stubTradeService{}
	h := NewTradeHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/trades?limit=9999", nil)
	rec := httptest.NewRecorder()
	h.ListTrades(rec, req)

	assert.Equal(t, 500, svc.opts.Limit)
}

func TestUpdateTradePathIDWins(t *testing.T) {
	svc := &stubTradeService{}
	h := NewTradeHandler(svc, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/trades/{id}", h.UpdateTrade)

	body := `{"id":"spoofed","symbol":"EURUSD","side":"Buy","size":1,"entry":1.1,"exit":1.2}`
	req := httptest.NewRequest(http.MethodPut, "/api/trades/trade-7", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trade-7", svc.trade.ID)
}

func TestUpdateTradeInvalidBody(t *testing.T) {
	h := NewTradeHandler(&stubTradeService{}, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/trades/{id}", h.UpdateTrade)

	req := httptest.NewRequest(http.MethodPut, "/api/trades/trade-7", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"already processed", domain.ErrAlreadyExists, http.StatusConflict},
		{"invalid trade", domain.ErrInvalidTrade, http.StatusBadRequest},
		{"wrapped invalid trade", errors.Join(errors.New("trade: update"), domain.ErrInvalidTrade), http.StatusBadRequest},
		{"missing columns", &domain.MissingColumnsError{Missing: []string{"symbol"}}, http.StatusUnprocessableEntity},
		{"no header", &domain.NoHeaderError{RowsScanned: 10}, http.StatusUnprocessableEntity},
		{"internal", errors.New("pool exhausted"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
			writeDomainError(rec, discardLogger(), req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWriteDomainErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	writeDomainError(rec, discardLogger(), req, errors.New("dial tcp 10.0.0.5:5432: timeout"))

	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
