package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/credit"
	"auto-credit-engine/internal/utils"
)

// DecisionLookup reads stored decisions back.
type DecisionLookup interface {
	GetByID(ctx context.Context, id string) (*models.CreditDecision, error)
	ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.CreditDecision, error)
}

// DecisionRequest is the body of POST /decisions: the application plus the
// bureau score supplied by the caller.
type DecisionRequest struct {
	models.CreditApplicationParams
	CreditScore int `json:"credit_score"`
}

// DecisionHandler evaluates applications and serves stored decisions.
type DecisionHandler struct {
	service *credit.DecisionService
	lookup  DecisionLookup
}

// NewDecisionHandler creates a decision handler. lookup may be nil when no
// database is configured; reads then answer 503.
func NewDecisionHandler(service *credit.DecisionService, lookup DecisionLookup) *DecisionHandler {
	return &DecisionHandler{service: service, lookup: lookup}
}

// Handle routes POST to Decide and GET to the stored-decision reads.
func (h *DecisionHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET", "POST")

	switch request.HTTPMethod {
	case http.MethodOptions:
		return preflight(headers)
	case http.MethodPost:
		return h.decide(ctx, headers, request)
	case http.MethodGet:
		return h.read(ctx, headers, request)
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Use GET or POST")
	}
}

func (h *DecisionHandler) decide(ctx context.Context, headers map[string]string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	var req DecisionRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		if models.IsInvalidInput(err) {
			return validationResponse(headers, err)
		}
		return errorResponse(headers, http.StatusBadRequest, "Invalid request body")
	}

	score, err := models.NewCreditScore(req.CreditScore)
	if err != nil {
		return validationResponse(headers, err)
	}

	app, err := req.ToApplication(h.service.Engine().Policy().DefaultTermMonths)
	if err != nil {
		return validationResponse(headers, err)
	}

	decision, err := h.service.Decide(ctx, app, score)
	if err != nil {
		if models.IsInvalidInput(err) {
			return validationResponse(headers, err)
		}
		logger.Error("Failed to decide application",
			zap.String("application_id", app.ID()),
			zap.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to process application")
	}

	return jsonResponse(headers, http.StatusOK, decision)
}

func (h *DecisionHandler) read(ctx context.Context, headers map[string]string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.lookup == nil {
		return errorResponse(headers, http.StatusServiceUnavailable, "Decision storage is not configured")
	}

	if id := request.PathParameters["id"]; id != "" {
		decision, err := h.lookup.GetByID(ctx, id)
		if err != nil {
			utils.GetLogger().Error("Failed to load decision", zap.String("id", id), zap.Error(err))
			return errorResponse(headers, http.StatusInternalServerError, "Failed to load decision")
		}
		if decision == nil {
			return errorResponse(headers, http.StatusNotFound, "Decision not found")
		}
		return jsonResponse(headers, http.StatusOK, decision)
	}

	documentID := request.QueryStringParameters["document_id"]
	if documentID == "" {
		return errorResponse(headers, http.StatusBadRequest, "Provide a decision id or document_id")
	}
	limit, _ := strconv.Atoi(request.QueryStringParameters["limit"])

	decisions, err := h.lookup.ListByDocument(ctx, documentID, limit)
	if err != nil {
		utils.GetLogger().Error("Failed to list decisions", zap.String("document_id", documentID), zap.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to list decisions")
	}
	if decisions == nil {
		decisions = []*models.CreditDecision{}
	}

	return jsonResponse(headers, http.StatusOK, map[string]any{
		"document_id": documentID,
		"decisions":   decisions,
	})
}
