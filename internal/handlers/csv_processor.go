package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"auto-credit-engine/internal/services/credit"
	s3service "auto-credit-engine/internal/services/s3"
	"auto-credit-engine/internal/utils"
)

const maxReportedErrors = 10

// BatchFiles is the object storage the batch processor reads and archives.
type BatchFiles interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	MoveFile(ctx context.Context, sourceKey, destKey string) error
}

// CSVProcessorHandler decides every application in an uploaded CSV.
type CSVProcessorHandler struct {
	files   BatchFiles
	service *credit.DecisionService
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler(files BatchFiles, service *credit.DecisionService) *CSVProcessorHandler {
	return &CSVProcessorHandler{files: files, service: service}
}

// CSVProcessResult is the result of processing a CSV file.
type CSVProcessResult struct {
	Message   string   `json:"message"`
	BatchID   string   `json:"batch_id"`
	Key       string   `json:"key,omitempty"`
	Approved  int      `json:"approved"`
	Rejected  int      `json:"rejected"`
	Invalid   int      `json:"invalid"`
	Persisted int      `json:"persisted"`
	Errors    []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded CSV files. Each record is handled
// independently; a failing file does not block the others.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) ([]CSVProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return []CSVProcessResult{{Message: "No records to process"}}, nil
	}

	results := make([]CSVProcessResult, 0, len(s3Event.Records))
	var firstErr error

	for _, record := range s3Event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return results, fmt.Errorf("failed to decode S3 key: %w", err)
		}
		if !strings.HasPrefix(key, s3service.UploadPrefix) {
			logger.Info("Skipping object outside upload prefix", zap.String("key", key))
			continue
		}

		result, err := h.ProcessObject(ctx, key)
		if err != nil {
			logger.Error("Failed to process CSV", zap.String("key", key), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, *result)
	}

	return results, firstErr
}

// ProcessObject downloads, decides, reports and archives one uploaded file.
func (h *CSVProcessorHandler) ProcessObject(ctx context.Context, key string) (*CSVProcessResult, error) {
	logger := utils.GetLogger()

	content, err := h.files.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download CSV: %w", err)
	}

	result, err := h.ProcessContent(ctx, generateBatchID(key), string(content))
	if err != nil {
		return nil, err
	}
	result.Key = key

	report, err := json.Marshal(result)
	if err == nil {
		if err := h.files.UploadFile(ctx, s3service.ResultsKey(result.BatchID), report, "application/json"); err != nil {
			logger.Warn("Failed to upload batch report", zap.Error(err))
		}
	}

	if err := h.files.MoveFile(ctx, key, s3service.ArchiveKey(key)); err != nil {
		logger.Warn("Failed to archive file", zap.Error(err))
	}

	return result, nil
}

// ProcessContent parses CSV content and decides every valid row.
func (h *CSVProcessorHandler) ProcessContent(ctx context.Context, batchID, content string) (*CSVProcessResult, error) {
	logger := utils.GetLogger()

	parser := utils.NewCSVParser(h.service.Engine().Policy().DefaultTermMonths)
	rows, parseErrors := parser.ParseApplications(content)

	logger.Info("Parsed CSV",
		zap.String("batch_id", batchID),
		zap.Int("valid_rows", len(rows)),
		zap.Int("parse_errors", len(parseErrors)))

	allErrors := make([]string, 0, len(parseErrors))
	for _, e := range parseErrors {
		allErrors = append(allErrors, e.Error())
	}

	if len(rows) == 0 {
		return &CSVProcessResult{
			Message: "No valid applications found in CSV",
			BatchID: batchID,
			Invalid: len(parseErrors),
			Errors:  limitErrors(allErrors),
		}, nil
	}

	items := make([]credit.BatchItem, len(rows))
	for i, row := range rows {
		items[i] = credit.BatchItem{
			Line:        row.Line,
			Application: row.Application,
			CreditScore: row.CreditScore,
		}
	}

	batch, err := h.service.DecideBatch(ctx, batchID, items)
	if err != nil {
		return nil, fmt.Errorf("failed to decide batch: %w", err)
	}
	allErrors = append(allErrors, batch.Errors...)

	return &CSVProcessResult{
		Message:   "CSV processed successfully",
		BatchID:   batchID,
		Approved:  batch.Approved,
		Rejected:  batch.Rejected,
		Invalid:   batch.Invalid + len(parseErrors),
		Persisted: batch.Persisted,
		Errors:    limitErrors(allErrors),
	}, nil
}

func limitErrors(errs []string) []string {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}

// generateBatchID generates a unique batch ID for this upload.
func generateBatchID(key string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	hash := sha256.Sum256([]byte(key + timestamp))
	return hex.EncodeToString(hash[:])[:16]
}
