package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/credit"
)

// SimulationRequest asks for the installment of a hypothetical loan.
type SimulationRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	AnnualRate      decimal.Decimal `json:"annual_rate"`
	TermMonths      int             `json:"term_months"`
	IncludeSchedule bool            `json:"include_schedule"`
	StartDate       string          `json:"start_date,omitempty"`
}

// SimulationResponse carries the installment and, on request, the schedule.
type SimulationResponse struct {
	credit.Installment
	Currency string                 `json:"currency"`
	Schedule []credit.ScheduleEntry `json:"schedule,omitempty"`
}

// SimulationHandler computes installments without creating an application.
type SimulationHandler struct {
	engine *credit.Engine
}

// NewSimulationHandler creates a simulation handler.
func NewSimulationHandler(engine *credit.Engine) *SimulationHandler {
	return &SimulationHandler{engine: engine}
}

// Handle processes POST /installments.
func (h *SimulationHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST")

	switch request.HTTPMethod {
	case http.MethodOptions:
		return preflight(headers)
	case http.MethodPost:
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Use POST")
	}

	var req SimulationRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid request body")
	}
	if req.TermMonths == 0 {
		req.TermMonths = h.engine.Policy().DefaultTermMonths
	}
	if err := h.engine.ValidateTerm(req.TermMonths); err != nil {
		return validationResponse(headers, err)
	}

	installment, err := credit.Amortize(req.Amount, req.AnnualRate, req.TermMonths)
	if err != nil {
		return validationResponse(headers, err)
	}

	resp := SimulationResponse{Installment: installment, Currency: models.Currency}

	if req.IncludeSchedule {
		start := time.Now().UTC()
		if s := strings.TrimSpace(req.StartDate); s != "" {
			if start, err = time.Parse("2006-01-02", s); err != nil {
				return errorResponse(headers, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			}
		}
		if resp.Schedule, err = credit.GenerateSchedule(req.Amount, req.AnnualRate, req.TermMonths, start); err != nil {
			return validationResponse(headers, err)
		}
	}

	return jsonResponse(headers, http.StatusOK, resp)
}
