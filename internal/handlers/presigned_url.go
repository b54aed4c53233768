package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	s3service "auto-credit-engine/internal/services/s3"
	"auto-credit-engine/internal/utils"
)

const uploadURLExpiry = time.Hour

// UploadURLSigner issues presigned PUT URLs.
type UploadURLSigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler handles requests for presigned batch upload URLs.
type PresignedURLHandler struct {
	signer UploadURLSigner
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(signer UploadURLSigner) *PresignedURLHandler {
	return &PresignedURLHandler{signer: signer}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("GET")

	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers)
	}

	filename := request.QueryStringParameters["filename"]
	if filename == "" {
		filename = "applications_" + uuid.NewString()[:8] + ".csv"
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errorResponse(headers, http.StatusBadRequest, "Only CSV files are allowed")
	}

	s3Key := s3service.UploadKey(uuid.NewString(), sanitizeFilename(filename), time.Now())

	result, err := h.signer.GeneratePresignedUploadURL(ctx, s3Key, "text/csv", uploadURLExpiry)
	if err != nil {
		logger.Error("Failed to generate presigned URL", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	logger.Info("Generated presigned URL", utils.String("s3Key", s3Key))

	return jsonResponse(headers, http.StatusOK, PresignedURLResponse{
		UploadURL: result.URL,
		S3Key:     result.Key,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	})
}

// sanitizeFilename keeps [A-Za-z0-9._-] and caps the length at 100.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[len(safe)-100:]
	}
	return safe
}
