// Package handlers provides API Gateway and S3 event handlers for the auto
// credit engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"auto-credit-engine/internal/models"
)

// corsHeaders returns the CORS and content-type headers for the given methods.
func corsHeaders(methods ...string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": strings.Join(append(methods, "OPTIONS"), ","),
		"Content-Type":                 "application/json",
	}
}

// jsonResponse marshals v as the response body.
func jsonResponse(headers map[string]string, statusCode int, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to encode response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// validationResponse reports a rejected field as 400 with the field name.
func validationResponse(headers map[string]string, err error) (events.APIGatewayProxyResponse, error) {
	payload := map[string]string{
		"error":   http.StatusText(http.StatusBadRequest),
		"message": err.Error(),
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		payload["field"] = verr.Field
	}
	return jsonResponse(headers, http.StatusBadRequest, payload)
}

func preflight(headers map[string]string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}, nil
}
