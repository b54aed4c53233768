package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/credit"
)

// recentYear keeps test vehicles inside the age limit whatever the clock says.
func recentYear() int {
	return time.Now().Year() - 1
}

func newService(t *testing.T, store credit.DecisionStore) *credit.DecisionService {
	t.Helper()
	engine, err := credit.NewEngine(credit.DefaultPolicy())
	require.NoError(t, err)
	return credit.NewDecisionService(engine, store, nil, nil)
}

func applicationBody(score int) string {
	return fmt.Sprintf(`{
		"application_id": "app-100",
		"customer": {
			"document_id": "1020304050",
			"name": "Laura Gómez",
			"date_of_birth": "1988-03-02",
			"monthly_income": "8000000",
			"current_monthly_debts": "0",
			"work_experience_months": 48
		},
		"vehicle": {
			"vin": "1HGCM82633A004352",
			"brand": "Toyota",
			"model": "Corolla Cross",
			"year": %d,
			"value": "90000000",
			"kilometers": 12000
		},
		"requested_amount": "60000000",
		"term_months": 60,
		"credit_score": %d
	}`, recentYear(), score)
}

func applicationCSV() string {
	return fmt.Sprintf(`document_id,name,date_of_birth,monthly_income,vin,brand,model,year,value,kilometers,requested_amount,credit_score
1020304050,Laura Gómez,1988-03-02,8000000,1HGCM82633A004352,Toyota,Corolla,%[1]d,90000000,12000,60000000,780
1111111111,Bad Score,1988-03-02,8000000,1HGCM82633A004352,Toyota,Corolla,%[1]d,90000000,12000,60000000,950
2222222222,Old Car,1988-03-02,8000000,1HGCM82633A004352,Toyota,Corolla,2001,90000000,12000,60000000,780`, recentYear())
}

type memoryStore struct {
	saved []*models.CreditDecision
}

func (m *memoryStore) Save(_ context.Context, d *models.CreditDecision) error {
	m.saved = append(m.saved, d)
	return nil
}

func (m *memoryStore) BulkSave(_ context.Context, ds []*models.CreditDecision) (*models.BulkInsertResult, error) {
	m.saved = append(m.saved, ds...)
	return &models.BulkInsertResult{InsertedCount: len(ds)}, nil
}

func decodeBody(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}
