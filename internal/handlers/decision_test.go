package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-credit-engine/internal/handlers"
	"auto-credit-engine/internal/models"
)

type fakeLookup struct {
	byID  map[string]*models.CreditDecision
	byDoc map[string][]*models.CreditDecision
	err   error
	limit int
}

func (f *fakeLookup) GetByID(_ context.Context, id string) (*models.CreditDecision, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeLookup) ListByDocument(_ context.Context, documentID string, limit int) ([]*models.CreditDecision, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.limit = limit
	return f.byDoc[documentID], nil
}

func TestDecisionHandler_PostDecides(t *testing.T) {
	store := &memoryStore{}
	h := handlers.NewDecisionHandler(newService(t, store), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       applicationBody(780),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "app-100", body["application_id"])
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, "60000000", body["approved_amount"])
	require.Len(t, store.saved, 1)
}

func TestDecisionHandler_PostInvalidScore(t *testing.T) {
	h := handlers.NewDecisionHandler(newService(t, nil), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       applicationBody(120),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "credit_score", decodeBody(t, resp.Body)["field"])
}

func TestDecisionHandler_PostInvalidBirthDate(t *testing.T) {
	h := handlers.NewDecisionHandler(newService(t, nil), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"customer": {"date_of_birth": "yesterday"}, "credit_score": 700}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "date_of_birth", decodeBody(t, resp.Body)["field"])
}

func TestDecisionHandler_PostMalformedBody(t *testing.T) {
	h := handlers.NewDecisionHandler(newService(t, nil), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{not json`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", decodeBody(t, resp.Body)["message"])
}

func TestDecisionHandler_GetWithoutStorage(t *testing.T) {
	h := handlers.NewDecisionHandler(newService(t, nil), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		PathParameters: map[string]string{"id": "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDecisionHandler_GetByID(t *testing.T) {
	lookup := &fakeLookup{byID: map[string]*models.CreditDecision{
		"dec-1": {ID: "dec-1", Status: models.ApplicationStatusRejected},
	}}
	h := handlers.NewDecisionHandler(newService(t, nil), lookup)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		PathParameters: map[string]string{"id": "dec-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "REJECTED", decodeBody(t, resp.Body)["status"])

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		PathParameters: map[string]string{"id": "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDecisionHandler_ListByDocument(t *testing.T) {
	lookup := &fakeLookup{byDoc: map[string][]*models.CreditDecision{
		"1020304050": {{ID: "dec-1"}, {ID: "dec-2"}},
	}}
	h := handlers.NewDecisionHandler(newService(t, nil), lookup)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: map[string]string{"document_id": "1020304050", "limit": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, lookup.limit)

	body := decodeBody(t, resp.Body)
	assert.Len(t, body["decisions"], 2)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: map[string]string{"document_id": "unknown"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, decodeBody(t, resp.Body)["decisions"])
}

func TestDecisionHandler_GetErrors(t *testing.T) {
	h := handlers.NewDecisionHandler(newService(t, nil), &fakeLookup{err: errors.New("pool closed")})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		PathParameters: map[string]string{"id": "dec-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDecisionHandler_MethodNotAllowed(t *testing.T) {
	h := handlers.NewDecisionHandler(newService(t, nil), nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete})
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET,POST,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
}
